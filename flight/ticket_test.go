package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTicketRoundTrip(t *testing.T) {
	encoded, err := EncodeTicket("sample")
	require.NoError(t, err)

	decoded, err := DecodeTicket(encoded)
	require.NoError(t, err)
	assert.Equal(t, "sample", decoded.DatasetID)
}

func TestDecodeTicketFallsBackToRawBytes(t *testing.T) {
	decoded, err := DecodeTicket([]byte("sample"))
	require.NoError(t, err)
	assert.Equal(t, "sample", decoded.DatasetID)
}

func TestDecodeTicketRejectsEmpty(t *testing.T) {
	_, err := DecodeTicket(nil)
	assert.Error(t, err)
}
