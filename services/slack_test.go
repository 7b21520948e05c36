package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlack_PaymentConfirmed(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	err := s.PaymentConfirmed(context.Background(),
		&models.Subscriber{FirstName: "Amira", LastName: "B", Email: "amira@example.com"}, "tx-9")
	require.NoError(t, err)
	assert.Contains(t, payload["text"], "amira@example.com")
	assert.Contains(t, payload["text"], "tx-9")
}

func TestSlack_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewSlack(srv.URL).OrderReceived(context.Background(), &models.Order{ID: "o-1"})
	assert.Error(t, err)
}

func TestSlack_DisabledSkips(t *testing.T) {
	var s *Slack
	assert.False(t, s.Enabled())
	assert.NoError(t, s.OrderReceived(context.Background(), &models.Order{}))
	assert.NoError(t, NewSlack("").PaymentConfirmed(context.Background(), &models.Subscriber{}, ""))
}
