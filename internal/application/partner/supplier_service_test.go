package partner_test

import (
	"context"
	"testing"

	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierService(t *testing.T) (*testutil.Store, *partner.SupplierService, *archiveapp.Service) {
	t.Helper()
	store := testutil.NewStore(t)
	archiver := archiveapp.NewService(store.TxScope, ledger.New(nil))
	return store, partner.NewSupplierService(store.TxScope, archiver), archiver
}

func TestSupplierService_Create(t *testing.T) {
	tests := []struct {
		name    string
		req     partner.CreateSupplierRequest
		wantErr bool
	}{
		{
			name: "name only",
			req:  partner.CreateSupplierRequest{Name: "Mombasa Millers"},
		},
		{
			name: "with contact",
			req: partner.CreateSupplierRequest{
				Name:        "Rift Valley Dairy",
				ContactName: "Otieno",
				Email:       "orders@riftdairy.example",
			},
		},
		{
			name:    "blank name",
			req:     partner.CreateSupplierRequest{Name: "   "},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     partner.CreateSupplierRequest{Name: "Rift Valley Dairy", Email: "not-an-email"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, _ := newSupplierService(t)
			resp, err := svc.Create(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, shared.HasCode(err, shared.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SUP-0001", resp.PublicID)
			assert.Equal(t, tt.req.Email, resp.Email)
		})
	}
}

func TestSupplierService_DeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	_, svc, archiver := newSupplierService(t)

	created, err := svc.Create(ctx, partner.CreateSupplierRequest{Name: "Mombasa Millers"})
	require.NoError(t, err)

	snapshot, err := svc.Delete(ctx, created.ID, "duplicate", nil)
	require.NoError(t, err)

	page, err := svc.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = archiver.Restore(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
	require.NoError(t, err)

	restored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, restored.PublicID)
	assert.Equal(t, "Mombasa Millers", restored.Name)

	next, err := svc.Create(ctx, partner.CreateSupplierRequest{Name: "Rift Valley Dairy"})
	require.NoError(t, err)
	assert.Equal(t, "SUP-0002", next.PublicID, "restored ids are never reissued")
}
