package db

import (
	"context"
	"os"
	"sync"
	"testing"

	"bace/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore connects to TEST_DATABASE_URL and skips the test when it is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, Migrate(ctx, conn))
	return New(conn)
}

func newSubscriber(t *testing.T, s *Store) *models.Subscriber {
	t.Helper()
	sub := &models.Subscriber{
		FirstName: "Amira",
		LastName:  "Ben Salah",
		Email:     "  " + uuid.NewString() + "@Example.com ",
		Phone:     "+21620123456",
	}
	require.NoError(t, s.CreateSubscriber(context.Background(), sub))
	return sub
}

func TestOpen_EmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestGetSubscriber_MalformedID(t *testing.T) {
	s := New(nil)
	_, err := s.GetSubscriber(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetOrder(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriberLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sub := newSubscriber(t, s)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.Paid)
	assert.Equal(t, NormalizeEmail(sub.Email), sub.Email)

	dup := &models.Subscriber{FirstName: "x", LastName: "y", Email: sub.Email, Phone: "+21650000000"}
	assert.ErrorIs(t, s.CreateSubscriber(ctx, dup), ErrDuplicateEmail)

	_, err := s.GetSubscriber(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	issued, err := s.IssueCredentials(ctx, sub.ID, models.Credentials{
		Code4: "1234", QRCode: "/qrcodes/a.png", QRDataURL: "data:image/png;base64,AA==",
	})
	require.NoError(t, err)
	assert.True(t, issued.Paid)
	assert.Equal(t, "1234", issued.Code4)

	_, err = s.IssueCredentials(ctx, sub.ID, models.Credentials{Code4: "9999"})
	assert.ErrorIs(t, err, ErrAlreadyIssued)

	got, err := s.GetSubscriberByCredentials(ctx, sub.Email, "1234")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "/qrcodes/a.png", got.QRCode)

	_, err = s.IssueCredentials(ctx, uuid.NewString(), models.Credentials{Code4: "1111"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueCredentials_ConcurrentSingleWinner(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	sub := newSubscriber(t, s)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IssueCredentials(ctx, sub.ID, models.Credentials{Code4: "4321"})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestOrdersAndStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	o := &models.Order{
		Profile: "eleve", FirstName: "Sami", LastName: "Trabelsi", Phone: "+21698000000",
		Email: email, School: "Lycee Bardo", Price: 34,
		PaymentProofPath: "proof.png", PaymentProofName: "recu.png",
	}
	require.NoError(t, s.CreateOrder(ctx, o))
	assert.Equal(t, models.OrderPending, o.Status)

	before, err := s.Stats(ctx)
	require.NoError(t, err)

	updated, err := s.UpdateOrderStatus(ctx, o.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	after, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Revenue+34, after.Revenue)

	mine, err := s.ListOrders(ctx, email)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)

	_, err = s.UpdateOrderStatus(ctx, uuid.NewString(), models.OrderShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	e := &models.PaymentEvent{OrderID: orderID, Status: "SUCCESS", TransactionID: "tx-1", Outcome: models.EventIssued}
	require.NoError(t, s.RecordPaymentEvent(ctx, e))
	assert.NotZero(t, e.ID)

	events, err := s.ListPaymentEvents(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventIssued, events[0].Outcome)
}
