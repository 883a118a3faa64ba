package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darshit3596/shreejida/internal/model"
)

// createTestStore creates a fresh store with default settings.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), model.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// reopen exports s and hydrates a second store from the bytes.
func reopen(t *testing.T, s *Store) *Store {
	t.Helper()
	ctx := context.Background()
	data, err := s.Export(ctx)
	require.NoError(t, err)
	s2, err := Open(ctx, data)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })
	return s2
}

func createTestInvoice(id string, lines ...model.InvoiceLine) model.Invoice {
	return model.InvoiceDraft{
		CustomerName: "Test Customer",
		Vehicle:      "Activa",
		VehicleNo:    "GJ01AB1234",
		MobileNo:     "9876543210",
		KM:           "12000",
		Date:         "2026-10-15",
		Lines:        lines,
		Status:       model.StatusUnpaid,
	}.Build(id)
}
