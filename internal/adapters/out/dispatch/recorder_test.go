package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderTakeClears(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	opened, err := r.OpenNewContext(ctx, "sess-1", "https://wa.me/60123456789?text=hi")
	require.NoError(t, err)
	assert.True(t, opened)

	d, ok := r.Take("sess-1")
	require.True(t, ok)
	assert.Equal(t, TargetNew, d.Target)
	assert.Equal(t, "https://wa.me/60123456789?text=hi", d.URL)

	_, ok = r.Take("sess-1")
	assert.False(t, ok)
}

func TestRecorderLastWriteWins(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	_, err := r.OpenNewContext(ctx, "sess-1", "https://one.example")
	require.NoError(t, err)
	require.NoError(t, r.NavigateCurrent(ctx, "sess-1", "https://two.example"))

	d, ok := r.Take("sess-1")
	require.True(t, ok)
	assert.Equal(t, TargetCurrent, d.Target)
	assert.Equal(t, "https://two.example", d.URL)
}

func TestRecorderSessionsAreIsolated(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	_, err := r.OpenNewContext(ctx, "sess-1", "https://one.example")
	require.NoError(t, err)

	_, ok := r.Take("sess-2")
	assert.False(t, ok)

	_, ok = r.Take("sess-1")
	assert.True(t, ok)
}

func TestRecorderIgnoresEmptyInput(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	_, err := r.OpenNewContext(ctx, "", "https://one.example")
	require.NoError(t, err)
	_, err = r.OpenNewContext(ctx, "sess-1", "")
	require.NoError(t, err)

	_, ok := r.Take("sess-1")
	assert.False(t, ok)
}
