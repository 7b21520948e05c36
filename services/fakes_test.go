package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"bace/db"
	"bace/models"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []*Email
	err  error
}

func (m *fakeMailer) Provider() string { return "fake" }

func (m *fakeMailer) Send(ctx context.Context, e *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeStore mirrors the conditional update of the real store.
type fakeStore struct {
	mu          sync.Mutex
	subscribers map[string]*models.Subscriber
	events      []models.PaymentEvent
	getErr      error
}

func newFakeStore(subs ...*models.Subscriber) *fakeStore {
	s := &fakeStore{subscribers: map[string]*models.Subscriber{}}
	for _, sub := range subs {
		s.subscribers[sub.ID] = sub
	}
	return s
}

func (s *fakeStore) GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	sub, ok := s.subscribers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *fakeStore) GetSubscriberByCredentials(ctx context.Context, email, code4 string) (*models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscribers {
		if sub.Email == db.NormalizeEmail(email) && sub.Code4 != "" && sub.Code4 == code4 {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *fakeStore) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subscribers {
		if existing.Email == db.NormalizeEmail(sub.Email) {
			return db.ErrDuplicateEmail
		}
	}
	sub.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", len(s.subscribers)+1)
	sub.Email = db.NormalizeEmail(sub.Email)
	cp := *sub
	s.subscribers[sub.ID] = &cp
	return nil
}

func (s *fakeStore) IssueCredentials(ctx context.Context, id string, creds models.Credentials) (*models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscribers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if sub.Code4 != "" {
		return nil, db.ErrAlreadyIssued
	}
	sub.Paid = true
	sub.Code4 = creds.Code4
	sub.QRCode = creds.QRCode
	sub.QRDataURL = creds.QRDataURL
	cp := *sub
	return &cp, nil
}

func (s *fakeStore) RecordPaymentEvent(ctx context.Context, e *models.PaymentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *fakeStore) subscriber(id string) models.Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.subscribers[id]
}

func (s *fakeStore) outcomes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.Outcome)
	}
	return out
}

var errBoom = errors.New("boom")

func readDir(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	err    error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (s *fakeOrderStore) CreateOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	o.ID = fmt.Sprintf("10000000-0000-0000-0000-%012d", len(s.orders)+1)
	o.Status = models.OrderPending
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) ListOrders(ctx context.Context, email string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if email == "" || o.Email == db.NormalizeEmail(email) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	o.Status = status
	cp := *o
	return &cp, nil
}
