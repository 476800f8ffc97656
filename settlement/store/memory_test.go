package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirage-sim/settlement-engine/settlement"
	"github.com/mirage-sim/settlement-engine/settlement/store"
)

func run(id string, editionName string, quarter int, at time.Time) settlement.Run {
	return settlement.Run{
		ID:        settlement.RunID(id),
		Edition:   editionName,
		State:     settlement.PeriodState{Quarter: quarter},
		Result:    &settlement.Result{Warnings: []settlement.Warning{{Kind: settlement.WarnNetLoss}}},
		CreatedAt: at,
	}
}

func TestMemory_SaveGet(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, m.Save(ctx, run("r1", "classic", 1, at)))

	got, err := m.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "classic", got.Edition)
	assert.Equal(t, 1, got.Summary().WarningCount)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, settlement.ErrRunNotFound)
}

func TestMemory_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	at := time.Now()

	require.NoError(t, m.Save(ctx, run("r1", "classic", 1, at)))
	err := m.Save(ctx, run("r1", "revised", 2, at))
	assert.ErrorIs(t, err, settlement.ErrDuplicateRun)
}

func TestMemory_ListNewestFirstWithFilter(t *testing.T) {
	// GIVEN: Runs saved out of chronological order
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, offset := range []int{3, 1, 4, 2} {
		ed := "classic"
		if i%2 == 1 {
			ed = "revised"
		}
		require.NoError(t, m.Save(ctx, run(fmt.Sprintf("r%d", offset), ed, 1, base.Add(time.Duration(offset)*time.Hour))))
	}

	// WHEN: Listing everything, then one edition, then with a limit
	all, err := m.List(ctx, settlement.RunFilter{})
	require.NoError(t, err)
	revised, err := m.List(ctx, settlement.RunFilter{Edition: "revised"})
	require.NoError(t, err)
	limited, err := m.List(ctx, settlement.RunFilter{Limit: 2})
	require.NoError(t, err)

	// THEN: Newest first
	ids := func(s []settlement.RunSummary) []settlement.RunID {
		var out []settlement.RunID
		for _, r := range s {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []settlement.RunID{"r4", "r3", "r2", "r1"}, ids(all))
	assert.Equal(t, []settlement.RunID{"r2", "r1"}, ids(revised))
	assert.Equal(t, []settlement.RunID{"r4", "r3"}, ids(limited))
}

func TestMemory_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Save(ctx, run(fmt.Sprintf("r%d", i), "classic", 1, base.AddDate(0, 0, i))))
	}

	removed, err := m.DeleteBefore(ctx, base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	left, err := m.List(ctx, settlement.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
	_, err = m.Get(ctx, "r0")
	assert.ErrorIs(t, err, settlement.ErrRunNotFound)
}
