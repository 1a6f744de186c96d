package flight

import (
	"testing"

	arrowflight "github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorDatasetIDFromPath(t *testing.T) {
	id, err := descriptorDatasetID(&arrowflight.FlightDescriptor{
		Type: arrowflight.DescriptorPATH,
		Path: []string{"sample"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sample", id)
}

func TestDescriptorDatasetIDFromCmdJSON(t *testing.T) {
	id, err := descriptorDatasetID(&arrowflight.FlightDescriptor{
		Type: arrowflight.DescriptorCMD,
		Cmd:  []byte(`{"dataset_id":"sample"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "sample", id)
}

func TestDescriptorDatasetIDFromOpaqueCmd(t *testing.T) {
	id, err := descriptorDatasetID(&arrowflight.FlightDescriptor{
		Type: arrowflight.DescriptorCMD,
		Cmd:  []byte("sample"),
	})
	require.NoError(t, err)
	assert.Equal(t, "sample", id)
}

func TestDescriptorDatasetIDRejectsEmptyPath(t *testing.T) {
	_, err := descriptorDatasetID(&arrowflight.FlightDescriptor{Type: arrowflight.DescriptorPATH})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}
