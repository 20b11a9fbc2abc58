package rsvpfence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter_EmbeddedUse(t *testing.T) {
	lim, err := NewLimiter(Policy{Name: "comment", Max: 2, Window: time.Minute}, NewMemoryStore())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		d, err := lim.Limit(ctx, "client")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := lim.Limit(ctx, "client")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.NotEqual(t, "now", FormatWait(d.ResetAt, time.Now()).String())
}
