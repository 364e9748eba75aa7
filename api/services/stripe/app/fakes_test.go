package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway is an in-memory Stripe.
type fakeGateway struct {
	mu              sync.Mutex
	customers       map[string]gw.Customer
	charges         map[string]gw.Charge
	prices          map[string]bool
	created         int
	metadataUpdates []string
	metadataErr     error
	checkouts       []gw.CheckoutParams
	portalErr       error
	subscriptions   map[string][]gw.Subscription
	subscriptionErr error
	listed          []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customers:     map[string]gw.Customer{},
		charges:       map[string]gw.Charge{},
		prices:        map[string]bool{},
		subscriptions: map[string][]gw.Subscription{},
	}
}

func (f *fakeGateway) RetrieveCustomer(_ context.Context, id string) (gw.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return gw.Customer{}, fmt.Errorf("%w: %s", gw.ErrNotFound, id)
	}
	return c, nil
}

func (f *fakeGateway) CreateCustomer(_ context.Context, p gw.CustomerParams) (gw.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	c := gw.Customer{ID: fmt.Sprintf("cus_new_%d", f.created), Email: p.Email, Metadata: p.Metadata}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeGateway) UpdateCustomerMetadata(_ context.Context, id string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadataUpdates = append(f.metadataUpdates, id)
	if f.metadataErr != nil {
		return f.metadataErr
	}
	c := f.customers[id]
	c.ID = id
	c.Metadata = metadata
	f.customers[id] = c
	return nil
}

func (f *fakeGateway) RetrieveCharge(_ context.Context, id string) (gw.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.charges[id]
	if !ok {
		return gw.Charge{}, fmt.Errorf("%w: %s", gw.ErrNotFound, id)
	}
	return ch, nil
}

func (f *fakeGateway) RetrievePrice(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.prices[id] {
		return fmt.Errorf("%w: no such price %s", gw.ErrInvalidRequest, id)
	}
	return nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, p gw.CheckoutParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, p)
	return "https://checkout.stripe.test/session/" + p.CustomerID, nil
}

func (f *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	if f.portalErr != nil {
		return "", f.portalErr
	}
	return "https://billing.stripe.test/portal/" + customerID + "?return=" + returnURL, nil
}

func (f *fakeGateway) ListSubscriptions(_ context.Context, customerID string) ([]gw.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, customerID)
	if f.subscriptionErr != nil {
		return nil, f.subscriptionErr
	}
	return f.subscriptions[customerID], nil
}

func (f *fakeGateway) ConstructEvent(payload []byte, _ string) (gw.Event, error) {
	var env struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return gw.Event{}, fmt.Errorf("%w: %v", gw.ErrInvalidPayload, err)
	}
	return gw.Event{ID: env.ID, Type: env.Type, Object: env.Data.Object}, nil
}

// fakeUsers is an in-memory UserRepository. A transaction holds a single lock
// for its whole duration and works on a copy that is swapped in on commit.
type fakeUsers struct {
	txMu      sync.Mutex
	users     map[int64]stripedb.User
	writes    int
	updateErr error

	// commits holds the users map as of every committed transaction, in commit order.
	commits []map[int64]stripedb.User
}

func newFakeUsers(users ...stripedb.User) *fakeUsers {
	f := &fakeUsers{users: map[int64]stripedb.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) InTx(_ context.Context, fn func(tx stripedb.UserTx) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	work := make(map[int64]stripedb.User, len(f.users))
	for id, u := range f.users {
		work[id] = u
	}
	tx := &fakeUserTx{parent: f, users: work}
	if err := fn(tx); err != nil {
		return err
	}
	f.users = work
	f.writes += tx.writes
	f.commits = append(f.commits, work)
	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (stripedb.User, error) {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return stripedb.User{}, stripedb.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) get(id int64) stripedb.User {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return f.users[id]
}

// committed returns user id as of each committed transaction, oldest first.
func (f *fakeUsers) committed(id int64) []stripedb.User {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	out := make([]stripedb.User, 0, len(f.commits))
	for _, c := range f.commits {
		out = append(out, c[id])
	}
	return out
}

func (f *fakeUsers) writeCount() int {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return f.writes
}

type fakeUserTx struct {
	parent *fakeUsers
	users  map[int64]stripedb.User
	writes int
}

func (t *fakeUserTx) GetUserForUpdate(_ context.Context, id int64) (stripedb.User, error) {
	u, ok := t.users[id]
	if !ok {
		return stripedb.User{}, stripedb.ErrUserNotFound
	}
	return u, nil
}

func (t *fakeUserTx) GetUserByCustomerForUpdate(_ context.Context, customerID string) (stripedb.User, error) {
	if customerID == "" {
		return stripedb.User{}, stripedb.ErrUserNotFound
	}
	var found *stripedb.User
	for _, u := range t.users {
		u := u
		if u.StripeCustomerID == customerID && (found == nil || u.ID < found.ID) {
			found = &u
		}
	}
	if found == nil {
		return stripedb.User{}, stripedb.ErrUserNotFound
	}
	return *found, nil
}

func (t *fakeUserTx) UpdateFields(_ context.Context, u stripedb.User, fields []stripedb.Field) error {
	if t.parent.updateErr != nil {
		return t.parent.updateErr
	}
	cur, ok := t.users[u.ID]
	if !ok {
		return stripedb.ErrUserNotFound
	}
	for _, f := range fields {
		switch f {
		case stripedb.FieldStripeCustomerID:
			cur.StripeCustomerID = u.StripeCustomerID
		case stripedb.FieldHasMembership:
			cur.HasMembership = u.HasMembership
		case stripedb.FieldMembershipPaused:
			cur.MembershipPaused = u.MembershipPaused
		}
	}
	t.users[u.ID] = cur
	t.writes++
	return nil
}

func newTestService(users *fakeUsers, g gw.StripeGateway) Service {
	return NewService(users, g, Options{
		Configured:  true,
		MetadataKey: "user_id",
		FrontendURL: "http://frontend.test",
		Logger:      discardLogger(),
	})
}

func newEvent(eventType string, object string) gw.Event {
	return gw.Event{ID: "evt_test", Type: eventType, Object: json.RawMessage(object)}
}
