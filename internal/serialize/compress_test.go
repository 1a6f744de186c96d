package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressBodyRoundTrip(t *testing.T) {
	original := []byte(strings.Repeat(`{"id":"dataset","totalBytes":1024},`, 500))

	compressed, err := CompressBody(original)
	require.NoError(t, err)
	assert.NotEmpty(t, compressed)

	decompressed, err := DecompressBody(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestCompressBodyShrinksRepetitiveInput(t *testing.T) {
	original := []byte(strings.Repeat("a", 10000))

	compressed, err := CompressBody(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))
}

func TestDecompressBodyRejectsGarbage(t *testing.T) {
	_, err := DecompressBody([]byte("not zstd data"))
	assert.Error(t, err)
}
