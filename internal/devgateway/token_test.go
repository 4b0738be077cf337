package devgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	for _, id := range []string{"a", "5e434070-68e4-43e5-a609-fcedeebcc3a3", "id with spaces"} {
		got, err := decodeToken(encodeToken(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestEmptyTokenMeansFirstPage(t *testing.T) {
	got, err := decodeToken("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBadTokenRejected(t *testing.T) {
	_, err := decodeToken("%%%not-base64%%%")
	assert.Error(t, err)
}
