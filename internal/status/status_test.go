package status_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/status"
	"github.com/mrussa/order-bridge/internal/store"
)

func newStoreWith(id string) *store.Store {
	s := store.New()
	s.Put(canonical.Order{ID: id, CreatedAt: "2024-03-10T12:00:00Z"})
	return s
}

func TestUpdate_MissingStatusIsInvalid(t *testing.T) {
	t.Parallel()

	s := newStoreWith("a")
	_, err := status.Update(s, "a", status.Request{})
	require.ErrorIs(t, err, status.ErrInvalid)

	_, err = status.Update(s, "a", status.Request{Status: "   "})
	require.ErrorIs(t, err, status.ErrInvalid)
}

func TestUpdate_DerivesDefaults(t *testing.T) {
	t.Parallel()

	s := newStoreWith("a")
	rec, err := status.Update(s, "a", status.Request{Status: "preparing"})
	require.NoError(t, err)
	require.Equal(t, "PREPARING", rec.Status.Status)
	require.Equal(t, "PREPARING", rec.Status.FullCode)
	require.Equal(t, "PRE", rec.Status.Code)
	require.NotEmpty(t, rec.Status.UpdatedAt)
}

func TestUpdate_ShortStatusCode(t *testing.T) {
	t.Parallel()

	s := newStoreWith("a")
	rec, err := status.Update(s, "a", status.Request{Status: "ok"})
	require.NoError(t, err)
	require.Equal(t, "OK", rec.Status.Code)
}

func TestUpdate_ExplicitCodesPreserved(t *testing.T) {
	t.Parallel()

	s := newStoreWith("a")
	rec, err := status.Update(s, "a", status.Request{
		Status:   "dispatched",
		FullCode: "ON_THE_WAY",
		Code:     "OTW",
	})
	require.NoError(t, err)
	require.Equal(t, "DISPATCHED", rec.Status.Status)
	require.Equal(t, "ON_THE_WAY", rec.Status.FullCode)
	require.Equal(t, "OTW", rec.Status.Code)
}

func TestUpdate_TerminalStatusMigrates(t *testing.T) {
	t.Parallel()

	s := newStoreWith("a")
	rec, err := status.Update(s, "a", status.Request{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, store.StateProcessed, rec.State)
	require.Empty(t, s.ListPending())
}

func TestUpdate_UnknownOrder(t *testing.T) {
	t.Parallel()

	s := store.New()
	_, err := status.Update(s, "nope", status.Request{Status: "CONFIRMED"})
	require.ErrorIs(t, err, store.ErrNotFound)
}
