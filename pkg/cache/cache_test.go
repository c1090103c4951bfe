package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewService(nil)

	assert.False(t, c.IsAvailable())
	assert.ErrorIs(t, c.Ping(ctx), ErrUnavailable)

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, TTLDefault))
	assert.NoError(t, c.SetCircles(ctx, []string{"x"}))
	assert.NoError(t, c.SetExpSummary(ctx, "u1", 10))
	assert.NoError(t, c.InvalidateExpSummary(ctx, "u1"))
	assert.NoError(t, c.InvalidateHistory(ctx, "2"))
	assert.NoError(t, c.Delete(ctx))

	var dest map[string]int
	assert.ErrorIs(t, c.Get(ctx, "k", &dest), ErrUnavailable)
	assert.ErrorIs(t, c.GetExpSummary(ctx, "u1", &dest), ErrUnavailable)

	ok, err := c.Exists(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "exp:summary:u1", ExpSummaryKey("u1"))
	assert.Equal(t, "history:2:1:20", HistoryKey("2", 1, 20))
}
