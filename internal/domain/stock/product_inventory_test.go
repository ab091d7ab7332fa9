package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *ProductInventoryState {
	t.Helper()
	state, err := NewProductInventoryState(uuid.New())
	require.NoError(t, err)
	return state
}

func TestNewProductInventoryState(t *testing.T) {
	t.Run("starts at zero", func(t *testing.T) {
		state := newState(t)
		assert.True(t, state.QuantityOnHand.IsZero())
		assert.True(t, state.AverageCost.IsZero())
		assert.False(t, state.HasStock())
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewProductInventoryState(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestReceive(t *testing.T) {
	t.Run("first receipt sets the average outright", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(100), decimal.NewFromInt(10)))

		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(100)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(10)))
	})

	t.Run("subsequent receipts move the weighted average", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(100), decimal.NewFromInt(10)))
		require.NoError(t, state.Receive(decimal.NewFromInt(50), decimal.NewFromInt(16)))

		// (100*10 + 50*16) / 150 = 12
		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(150)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(12)))
	})

	t.Run("average is rounded to four decimals", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(3), decimal.NewFromInt(10)))
		require.NoError(t, state.Receive(decimal.NewFromInt(3), decimal.NewFromInt(11)))

		// (30 + 33) / 6 = 10.5
		assert.True(t, state.AverageCost.Equal(decimal.RequireFromString("10.5")))

		require.NoError(t, state.Receive(decimal.NewFromInt(1), decimal.NewFromInt(10)))
		// (63 + 10) / 7 = 10.428571... -> 10.4286
		assert.True(t, state.AverageCost.Equal(decimal.RequireFromString("10.4286")))
	})

	t.Run("receipt into negative stock resets the average", func(t *testing.T) {
		state := newState(t)
		_, err := state.Issue(decimal.NewFromInt(5), true)
		require.NoError(t, err)
		require.True(t, state.QuantityOnHand.IsNegative())

		require.NoError(t, state.Receive(decimal.NewFromInt(10), decimal.NewFromInt(7)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(7)))
	})

	t.Run("rejects non-positive quantity and negative cost", func(t *testing.T) {
		state := newState(t)
		assert.Error(t, state.Receive(decimal.Zero, decimal.NewFromInt(10)))
		assert.Error(t, state.Receive(decimal.NewFromInt(1), decimal.NewFromInt(-1)))
	})
}

func TestIssue(t *testing.T) {
	t.Run("issue snapshots the average cost without changing it", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(100), decimal.NewFromInt(10)))

		cost, err := state.Issue(decimal.NewFromInt(30), false)
		require.NoError(t, err)

		assert.True(t, cost.Equal(decimal.NewFromInt(10)))
		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(70)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects issue beyond quantity on hand", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))

		_, err := state.Issue(decimal.NewFromInt(11), false)
		assert.True(t, shared.IsCode(err, shared.ErrCodeInsufficientStock))
		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	})

	t.Run("allowNegative permits overdraw", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))

		_, err := state.Issue(decimal.NewFromInt(15), true)
		require.NoError(t, err)
		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(-5)))
	})
}

func TestRestoreIssue(t *testing.T) {
	t.Run("round trip restores quantity and average", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(100), decimal.NewFromInt(10)))

		cost, err := state.Issue(decimal.NewFromInt(40), false)
		require.NoError(t, err)
		require.NoError(t, state.RestoreIssue(decimal.NewFromInt(40), cost))

		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(100)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(10)))
	})
}

func TestRevertReceipt(t *testing.T) {
	t.Run("backs the average out of a receipt", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(100), decimal.NewFromInt(10)))
		require.NoError(t, state.Receive(decimal.NewFromInt(50), decimal.NewFromInt(16)))
		require.True(t, state.AverageCost.Equal(decimal.NewFromInt(12)))

		require.NoError(t, state.RevertReceipt(decimal.NewFromInt(50), decimal.NewFromInt(16)))

		assert.True(t, state.QuantityOnHand.Equal(decimal.NewFromInt(100)))
		assert.True(t, state.AverageCost.Equal(decimal.NewFromInt(10)))
	})

	t.Run("reverting the only receipt zeroes the state", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(20), decimal.NewFromInt(4)))
		require.NoError(t, state.RevertReceipt(decimal.NewFromInt(20), decimal.NewFromInt(4)))

		assert.True(t, state.QuantityOnHand.IsZero())
		assert.True(t, state.AverageCost.IsZero())
	})

	t.Run("rejects reverting below zero", func(t *testing.T) {
		state := newState(t)
		require.NoError(t, state.Receive(decimal.NewFromInt(5), decimal.NewFromInt(4)))

		err := state.RevertReceipt(decimal.NewFromInt(6), decimal.NewFromInt(4))
		assert.True(t, shared.IsCode(err, shared.ErrCodeNegativeInventory))
	})
}

func TestTotalValue(t *testing.T) {
	state := newState(t)
	require.NoError(t, state.Receive(decimal.NewFromInt(8), decimal.RequireFromString("2.5")))
	assert.True(t, state.TotalValue().Equal(decimal.NewFromInt(20)))
	assert.True(t, state.CanFulfill(decimal.NewFromInt(8)))
	assert.False(t, state.CanFulfill(decimal.NewFromInt(9)))
}
