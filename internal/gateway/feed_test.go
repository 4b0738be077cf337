package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot(t *testing.T) {
	snap, err := decodeSnapshot[testRecord]([]byte(`{"items":[{"id":"a"},{"id":"b"}],"synced":true}`))
	require.NoError(t, err)
	assert.True(t, snap.Synced)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "a", snap.Items[0].ID)
}

func TestDecodeSnapshotEmpty(t *testing.T) {
	snap, err := decodeSnapshot[testRecord]([]byte(`{"items":[],"synced":false}`))
	require.NoError(t, err)
	assert.False(t, snap.Synced)
	assert.Empty(t, snap.Items)
}

func TestDecodeSnapshotBadPayload(t *testing.T) {
	_, err := decodeSnapshot[testRecord]([]byte(`not json`))
	assert.Error(t, err)
}
