package repository

import (
	"context"
	"testing"
	"time"

	"fundtrack/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ledger := store.Ledger()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.Local) }
	var ids []string
	for i, e := range []models.Expense{
		{Owner: "alice", Amount: decimal.NewFromInt(10), Category: "Food", OccurredOn: day(1)},
		{Owner: "alice", Amount: decimal.NewFromInt(20), Category: "Travel", OccurredOn: day(10)},
		{Owner: "bob", Amount: decimal.NewFromInt(99), Category: "Food", OccurredOn: day(10)},
		{Owner: "alice", Amount: decimal.NewFromInt(30), Category: "Food", OccurredOn: day(20)},
	} {
		e := e
		id, err := ledger.Insert(ctx, &e)
		require.NoErrorf(t, err, "insert #%d", i)
		ids = append(ids, id)
	}

	all, err := ledger.Find(ctx, "alice", models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[0], all[0].ID, "insertion order")
	assert.Equal(t, ids[3], all[2].ID)

	from, to, err := models.ParseDateRange("2024-01-05", "2024-01-20")
	require.NoError(t, err)
	food, err := ledger.Find(ctx, "alice", models.ExpenseFilter{Start: from, End: to, Category: "food"})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, ids[3], food[0].ID)

	sum, err := ledger.SumAmount(ctx, "alice", "")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(60)))

	sum, err = ledger.SumAmount(ctx, "alice", ids[1])
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(40)))

	// 不属于该用户的记录不可见
	_, err = ledger.FindOne(ctx, ids[2], "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)

	amount := decimal.NewFromInt(25)
	matched, err := ledger.Update(ctx, ids[1], "alice", models.ExpensePatch{Amount: &amount, UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, matched)
	got, err := ledger.FindOne(ctx, ids[1], "alice")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(amount))
	assert.Equal(t, "Travel", got.Category)

	matched, err = ledger.Update(ctx, ids[1], "bob", models.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = ledger.Delete(ctx, ids[0], "alice")
	require.NoError(t, err)
	assert.True(t, matched)
	matched, err = ledger.Delete(ctx, ids[0], "alice")
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestMemoryFunds(t *testing.T) {
	ctx := context.Background()
	funds := NewMemoryStore().Funds()
	now := time.Now()

	_, err := funds.Get(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, funds.SetTotal(ctx, "alice", decimal.NewFromInt(10), now), models.ErrNotFound)
	assert.ErrorIs(t, funds.Reset(ctx, "alice", now), models.ErrNotFound)

	require.NoError(t, funds.UpsertAllocation(ctx, "alice", decimal.NewFromInt(50), now))
	require.NoError(t, funds.UpsertAllocation(ctx, "alice", decimal.NewFromInt(30), now))
	fs, err := funds.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, fs.TotalAllocated.Equal(decimal.NewFromInt(80)))

	require.NoError(t, funds.WriteDerived(ctx, "alice", decimal.NewFromInt(20), decimal.NewFromInt(60), now))
	require.NoError(t, funds.SetTotal(ctx, "alice", decimal.NewFromInt(40), now))
	fs, err = funds.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, fs.TotalAllocated.Equal(decimal.NewFromInt(40)))
	assert.True(t, fs.Spent.Equal(decimal.NewFromInt(20)))

	ensured, err := funds.Ensure(ctx, "bob", now)
	require.NoError(t, err)
	assert.True(t, ensured.TotalAllocated.IsZero())

	owners, err := funds.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)

	require.NoError(t, funds.Reset(ctx, "alice", now))
	fs, err = funds.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, fs.TotalAllocated.IsZero())
	assert.True(t, fs.Spent.IsZero())
	assert.True(t, fs.Balance.IsZero())
}
