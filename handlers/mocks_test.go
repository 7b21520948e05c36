package handlers

import (
	"context"
	"errors"
	"io"

	"bace/models"
	"bace/services"
	"bace/storage"
)

var errMock = errors.New("mock failure")

type MockPayments struct {
	StartFunc              func(ctx context.Context, req services.StartPayment) (string, error)
	HandleNotificationFunc func(ctx context.Context, n services.Notification) (services.Outcome, error)
}

func (m *MockPayments) Start(ctx context.Context, req services.StartPayment) (string, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, req)
	}
	return "", errMock
}

func (m *MockPayments) HandleNotification(ctx context.Context, n services.Notification) (services.Outcome, error) {
	if m.HandleNotificationFunc != nil {
		return m.HandleNotificationFunc(ctx, n)
	}
	return "", errMock
}

type MockRegistration struct {
	RegisterFunc func(ctx context.Context, req services.RegisterRequest) (*models.Subscriber, error)
}

func (m *MockRegistration) Register(ctx context.Context, req services.RegisterRequest) (*models.Subscriber, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, errMock
}

type MockOrders struct {
	CreateFunc        func(ctx context.Context, req services.NewOrder, proof *services.Proof) (*models.Order, error)
	ListFunc          func(ctx context.Context) ([]models.Order, error)
	ListForMemberFunc func(ctx context.Context, email string) ([]models.Order, error)
	GetFunc           func(ctx context.Context, id string) (*models.Order, error)
	UpdateStatusFunc  func(ctx context.Context, id, status string) (*models.Order, error)
	OpenProofFunc     func(ctx context.Context, id string) (*models.Order, io.ReadCloser, error)
}

func (m *MockOrders) Create(ctx context.Context, req services.NewOrder, proof *services.Proof) (*models.Order, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, proof)
	}
	return nil, errMock
}

func (m *MockOrders) List(ctx context.Context) ([]models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.Order{}, nil
}

func (m *MockOrders) ListForMember(ctx context.Context, email string) ([]models.Order, error) {
	if m.ListForMemberFunc != nil {
		return m.ListForMemberFunc(ctx, email)
	}
	return []models.Order{}, nil
}

func (m *MockOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errMock
}

func (m *MockOrders) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, errMock
}

func (m *MockOrders) OpenProof(ctx context.Context, id string) (*models.Order, io.ReadCloser, error) {
	if m.OpenProofFunc != nil {
		return m.OpenProofFunc(ctx, id)
	}
	return nil, nil, errMock
}

type MockAdminStore struct {
	ListSubscribersFunc func(ctx context.Context) ([]models.Subscriber, error)
	StatsFunc           func(ctx context.Context) (*models.Stats, error)
	PingFunc            func(ctx context.Context) error
}

func (m *MockAdminStore) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	if m.ListSubscribersFunc != nil {
		return m.ListSubscribersFunc(ctx)
	}
	return []models.Subscriber{}, nil
}

func (m *MockAdminStore) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.Stats{}, nil
}

func (m *MockAdminStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// MockCredentialLookup backs a real services.Sessions.
type MockCredentialLookup struct {
	GetFunc func(ctx context.Context, email, code4 string) (*models.Subscriber, error)
}

func (m *MockCredentialLookup) GetSubscriberByCredentials(ctx context.Context, email, code4 string) (*models.Subscriber, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, email, code4)
	}
	return nil, errMock
}

var _ DocumentStore = (*storage.Local)(nil)
