package sheet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowSheet struct {
	Sheet
	delay time.Duration
}

func (s slowSheet) FindRow(ctx context.Context, match func(Record) bool) (Row, bool, error) {
	select {
	case <-time.After(s.delay):
		return Row{}, false, nil
	case <-ctx.Done():
		return Row{}, false, &Error{Op: "find", Kind: KindTimeout, Err: ctx.Err()}
	}
}

func TestGuard_QuotaExhausted(t *testing.T) {
	g := NewGuard(openTestSheet(t), GuardConfig{QuotaPerSecond: 0.001, QuotaBurst: 2}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := g.FindRow(ctx, func(Record) bool { return false })
		require.NoError(t, err)
	}

	_, _, err := g.FindRow(ctx, func(Record) bool { return false })
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, KindQuotaExceeded, KindOf(err))
	assert.True(t, IsTransient(err))

	// health checks are not metered
	assert.NoError(t, g.Ping(ctx))
}

func TestGuard_Timeout(t *testing.T) {
	g := NewGuard(slowSheet{delay: time.Second}, GuardConfig{Timeout: 20 * time.Millisecond}, nil)

	_, _, err := g.FindRow(context.Background(), func(Record) bool { return true })
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGuard_PassesThrough(t *testing.T) {
	g := NewGuard(openTestSheet(t), GuardConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, g.AppendRow(ctx, Record{Timestamp: time.Now(), Name: "A", Status: StatusAttending, GuestCount: 1, EditLink: "l"}))
	require.NoError(t, g.UpdateRowFields(ctx, FirstDataRow, Fields{Name: "B", GuestCount: 2}))

	row, found, err := g.FindRow(ctx, func(r Record) bool { return r.EditLink == "l" })
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "B", row.Name)
}
