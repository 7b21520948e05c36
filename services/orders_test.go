package services

import (
	"context"
	"io"
	"os"
	"testing"

	"bace/apperrors"
	"bace/config"
	"bace/models"
	"bace/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type ordersFixture struct {
	orders *Orders
	store  *fakeOrderStore
	files  *storage.Local
	mailer *fakeMailer
	bg     *Background
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	f := &ordersFixture{store: newFakeOrderStore(), files: files, mailer: &fakeMailer{}, bg: &Background{}}
	notifier := NewNotifier(f.mailer, nil, "", config.Email{AdminEmail: "admin@example.com"})
	f.orders = NewOrders(f.store, files, notifier, NewSlack(""), f.bg)
	return f
}

func validOrder() NewOrder {
	return NewOrder{Profile: "eleve", FirstName: "Sami", LastName: "Trabelsi", Phone: "98000000", Email: "Sami@Example.com", School: "Lycee Bardo"}
}

func TestOrders_Create(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.orders.Create(ctx, validOrder(), &Proof{Filename: `C:\scans\recu.png`, Data: pngHeader})
	require.NoError(t, err)
	f.bg.Wait()

	assert.Equal(t, 34, order.Price)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "sami@example.com", order.Email)
	assert.Equal(t, "recu.png", order.PaymentProofName)
	assert.Regexp(t, `\.png$`, order.PaymentProofPath)

	_, rc, err := f.orders.OpenProof(ctx, order.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, pngHeader, data)

	require.Equal(t, 1, f.mailer.count())
	assert.Len(t, f.mailer.sent[0].To, 2)
	assert.Equal(t, "image/png", f.mailer.sent[0].Attachments[0].ContentType)
}

func TestOrders_CreateRejects(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	noProfile := validOrder()
	noProfile.Profile = ""
	missing := validOrder()
	missing.Phone = ""

	cases := map[string]struct {
		req   NewOrder
		proof *Proof
	}{
		"no profile":   {noProfile, &Proof{Data: pngHeader}},
		"missing":      {missing, &Proof{Data: pngHeader}},
		"no file":      {validOrder(), nil},
		"wrong type":   {validOrder(), &Proof{Data: []byte("plain text, not an image")}},
		"too large":    {validOrder(), &Proof{Data: append(append([]byte{}, pngHeader...), make([]byte, MaxProofSize)...)}},
		"empty upload": {validOrder(), &Proof{Data: []byte{}}},
	}
	for name, tc := range cases {
		_, err := f.orders.Create(ctx, tc.req, tc.proof)
		require.Error(t, err, name)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), name)
	}

	entries, err := os.ReadDir(f.files.BasePath())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOrders_StoreFailureRemovesProof(t *testing.T) {
	f := newOrdersFixture(t)
	f.store.err = errBoom

	_, err := f.orders.Create(context.Background(), validOrder(), &Proof{Data: pngHeader})
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	entries, err := os.ReadDir(f.files.BasePath())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOrders_UpdateStatus(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	order, err := f.orders.Create(ctx, validOrder(), &Proof{Data: pngHeader})
	require.NoError(t, err)
	f.bg.Wait()

	updated, err := f.orders.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "lost")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, "missing", "shipped")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestOrders_ListForMember(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	_, err := f.orders.Create(ctx, validOrder(), &Proof{Data: pngHeader})
	require.NoError(t, err)
	f.bg.Wait()

	mine, err := f.orders.ListForMember(ctx, "sami@example.com")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := f.orders.ListForMember(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}
