package table

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreatesListedTablesOnly(t *testing.T) {
	r := NewRegistry(testTableConfig(), Options{Clock: quartz.NewMock(t)}, "main", "side")
	a, err := r.Get("main")
	require.NoError(t, err)
	b, err := r.Get("main")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = r.Get("side")
	require.NoError(t, err)
	tables := r.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "main", tables[0].ID())
}

func TestRegistryOpenWhenNoIDsGiven(t *testing.T) {
	r := NewRegistry(testTableConfig(), Options{Clock: quartz.NewMock(t)})
	_, err := r.Get("anything")
	assert.NoError(t, err)
	_, err = r.Get("")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRegistrySweepsEveryTable(t *testing.T) {
	mock := quartz.NewMock(t)
	r := NewRegistry(testTableConfig(), Options{Clock: mock})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range []string{"a", "b"} {
		tbl, err := r.Get(id)
		require.NoError(t, err)
		sit(t, tbl, "alice", "bob")
		_, err = tbl.StartHand(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, r.SweepTimeouts(ctx))
	mock.Advance(30 * time.Second).MustWait(ctx)
	assert.Equal(t, 2, r.SweepTimeouts(ctx))
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	r := NewRegistry(testTableConfig(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.RunJanitor(ctx, 10*time.Millisecond))
}
