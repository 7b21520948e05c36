package models

import (
	"time"
)

type Subscriber struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Paid      bool      `json:"paid"`
	Code4     string    `json:"code4,omitempty"`
	QRCode    string    `json:"qrCode,omitempty"`
	QRDataURL string    `json:"qrDataURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Issued reports whether access credentials have been attached.
func (s Subscriber) Issued() bool { return s.Code4 != "" }

// FullName is used as the email display name.
func (s Subscriber) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Credentials are the access code and QR image issued after payment.
type Credentials struct {
	Code4     string `json:"code4"`
	QRCode    string `json:"qrCode"`
	QRDataURL string `json:"qrDataURL"`
	// QRFile is the storage name of the image behind QRCode.
	QRFile string `json:"-"`
}

const (
	OrderPending   = "pending"
	OrderProcessed = "processed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
)

// ValidOrderStatus reports whether status is one an admin may set.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderProcessed, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

type Order struct {
	ID               string    `json:"id"`
	Profile          string    `json:"profile"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	School           string    `json:"school,omitempty"`
	Price            int       `json:"price"`
	PaymentProofPath string    `json:"paymentProofPath"`
	PaymentProofName string    `json:"paymentProofName"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

const (
	EventIssued        = "issued"
	EventAlreadyIssued = "already_issued"
	EventIgnored       = "ignored"
	EventNotFound      = "not_found"
	EventFailed        = "failed"
)

// PaymentEvent is one webhook delivery as received from the gateway.
type PaymentEvent struct {
	ID            int64     `json:"id"`
	OrderID       string    `json:"orderId"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId"`
	Outcome       string    `json:"outcome"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// Stats is the admin dashboard overview.
type Stats struct {
	Subscribers     int            `json:"subscribers"`
	PaidSubscribers int            `json:"paidSubscribers"`
	Unpaid          int            `json:"unpaidSubscribers"`
	Orders          int            `json:"orders"`
	OrdersByStatus  map[string]int `json:"ordersByStatus"`
	Revenue         int            `json:"revenue"`
}
