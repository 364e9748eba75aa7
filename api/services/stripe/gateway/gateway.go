package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

//go:generate mockgen -destination=mock/mock_gateway.go -package=mock_gateway . StripeGateway

// Gateway errors. Implementations map SDK errors onto these so callers never
// inspect SDK-specific error types.
var (
	// ErrNotFound indicates the requested Stripe object does not exist or was deleted.
	ErrNotFound = errors.New("stripe object not found")
	// ErrInvalidRequest indicates Stripe rejected the request parameters.
	ErrInvalidRequest = errors.New("invalid stripe request")
	// ErrInvalidSignature indicates the webhook signature could not be verified.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidPayload indicates the webhook body is not a decodable event.
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// Customer is the subset of a Stripe customer the app layer needs.
type Customer struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// Charge is the subset of a Stripe charge the app layer needs.
type Charge struct {
	ID         string
	CustomerID string
}

// Subscription is the subset of a Stripe subscription shown to members.
type Subscription struct {
	ID     string
	Status string
	// CurrentPeriodEnd is zero when Stripe reports no period end.
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// Event is a decoded webhook event. Object holds the raw JSON of data.object.
type Event struct {
	ID     string
	Type   string
	Object json.RawMessage
}

type CustomerParams struct {
	Email    string
	Name     string
	Metadata map[string]string
}

type CheckoutParams struct {
	CustomerID      string
	PriceID         string
	Mode            string
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
	TrialPeriodDays int64
}

// StripeGateway abstracts Stripe SDK operations needed by the app layer.
// Methods return values (not pointers) to respect the project's preference
// to avoid pointer types in public interfaces.
type StripeGateway interface {
	RetrieveCustomer(ctx context.Context, id string) (Customer, error)
	CreateCustomer(ctx context.Context, params CustomerParams) (Customer, error)
	UpdateCustomerMetadata(ctx context.Context, id string, metadata map[string]string) error
	RetrieveCharge(ctx context.Context, id string) (Charge, error)
	RetrievePrice(ctx context.Context, id string) error
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// ListSubscriptions returns the first page of the customer's subscriptions in
	// any status, newest first.
	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	// ConstructEvent verifies sigHeader against payload when a webhook secret is
	// configured, and decodes payload as plain JSON otherwise.
	ConstructEvent(payload []byte, sigHeader string) (Event, error)
}
