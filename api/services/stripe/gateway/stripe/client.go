package stripegw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v72"
	stripeclient "github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// Config configures the SDK-backed gateway. It is read once at construction.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// APIURL overrides the Stripe API base URL (stripe-mock, tests).
	APIURL string
}

// client is the Stripe SDK-backed implementation of the gateway.
type client struct {
	api           *stripeclient.API
	webhookSecret string
}

// New returns a StripeGateway backed by the official Stripe SDK. The SDK
// client is owned by the gateway; no package-level key is set.
func New(cfg Config) gw.StripeGateway {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	backendConfig := func() *stripe.BackendConfig {
		bc := &stripe.BackendConfig{HTTPClient: httpClient}
		if cfg.APIURL != "" {
			bc.URL = stripe.String(cfg.APIURL)
		}
		return bc
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig()),
	}
	return &client{
		api:           stripeclient.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *client) RetrieveCustomer(ctx context.Context, id string) (gw.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cust, err := c.api.Customers.Get(id, params)
	if err != nil {
		return gw.Customer{}, mapError(err)
	}
	if cust == nil || cust.Deleted {
		return gw.Customer{}, fmt.Errorf("%w: customer %s deleted", gw.ErrNotFound, id)
	}
	return gw.Customer{ID: cust.ID, Email: cust.Email, Metadata: cust.Metadata}, nil
}

func (c *client) CreateCustomer(ctx context.Context, p gw.CustomerParams) (gw.Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(p.Email)}
	if p.Name != "" {
		params.Name = stripe.String(p.Name)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	cust, err := c.api.Customers.New(params)
	if err != nil {
		return gw.Customer{}, mapError(err)
	}
	return gw.Customer{ID: cust.ID, Email: cust.Email, Metadata: cust.Metadata}, nil
}

func (c *client) UpdateCustomerMetadata(ctx context.Context, id string, metadata map[string]string) error {
	params := &stripe.CustomerParams{}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	_, err := c.api.Customers.Update(id, params)
	return mapError(err)
}

func (c *client) RetrieveCharge(ctx context.Context, id string) (gw.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := c.api.Charges.Get(id, params)
	if err != nil {
		return gw.Charge{}, mapError(err)
	}
	out := gw.Charge{ID: ch.ID}
	if ch.Customer != nil {
		out.CustomerID = ch.Customer.ID
	}
	return out, nil
}

func (c *client) RetrievePrice(ctx context.Context, id string) error {
	params := &stripe.PriceParams{}
	params.Context = ctx
	_, err := c.api.Prices.Get(id, params)
	return mapError(err)
}

func (c *client) CreateCheckoutSession(ctx context.Context, p gw.CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(p.Mode),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		},
	}
	if p.TrialPeriodDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(p.TrialPeriodDays)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", mapError(err)
	}
	return sess.URL, nil
}

func (c *client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", mapError(err)
	}
	return sess.URL, nil
}

// subscriptionPageSize bounds ListSubscriptions to a single page.
const subscriptionPageSize = 5

func (c *client) ListSubscriptions(ctx context.Context, customerID string) ([]gw.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: customerID,
		Status:   "all",
	}
	params.Limit = stripe.Int64(subscriptionPageSize)
	params.Single = true
	params.Context = ctx

	var out []gw.Subscription
	it := c.api.Subscriptions.List(params)
	for it.Next() {
		sub := it.Subscription()
		s := gw.Subscription{
			ID:                sub.ID,
			Status:            string(sub.Status),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}
		if sub.CurrentPeriodEnd > 0 {
			s.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		}
		out = append(out, s)
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (c *client) ConstructEvent(payload []byte, sigHeader string) (gw.Event, error) {
	var evt stripe.Event
	if c.webhookSecret != "" {
		var err error
		evt, err = webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
		if err != nil {
			if isSignatureError(err) {
				return gw.Event{}, fmt.Errorf("%w: %v", gw.ErrInvalidSignature, err)
			}
			return gw.Event{}, fmt.Errorf("%w: %v", gw.ErrInvalidPayload, err)
		}
	} else if err := json.Unmarshal(payload, &evt); err != nil {
		return gw.Event{}, fmt.Errorf("%w: %v", gw.ErrInvalidPayload, err)
	}

	// An event without a type is still a well-formed delivery; it dispatches as unhandled.
	out := gw.Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data != nil {
		out.Object = json.RawMessage(evt.Data.Raw)
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// mapError translates SDK errors into gateway sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", gw.ErrNotFound, se.Msg)
		}
		if se.Type == stripe.ErrorTypeInvalidRequest {
			return fmt.Errorf("%w: %s", gw.ErrInvalidRequest, se.Msg)
		}
	}
	return err
}
