package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// CustomerResolver maintains the link between local users and Stripe customers.
// Methods taking a UserTx must be called inside a transaction holding the
// user's row lock.
type CustomerResolver struct {
	gw          gw.StripeGateway
	metadataKey string
	log         *slog.Logger
}

func NewCustomerResolver(g gw.StripeGateway, metadataKey string, logger *slog.Logger) CustomerResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return CustomerResolver{gw: g, metadataKey: metadataKey, log: logger}
}

func (r CustomerResolver) metadata(userID int64) map[string]string {
	return map[string]string{r.metadataKey: strconv.FormatInt(userID, 10)}
}

// GetOrCreateCustomerID returns the user's Stripe customer id, replacing a
// stored id Stripe no longer knows about with a freshly created customer.
func (r CustomerResolver) GetOrCreateCustomerID(ctx context.Context, tx stripedb.UserTx, u *stripedb.User) (string, error) {
	if u.StripeCustomerID != "" {
		_, err := r.gw.RetrieveCustomer(ctx, u.StripeCustomerID)
		switch {
		case err == nil:
			return u.StripeCustomerID, nil
		case errors.Is(err, gw.ErrNotFound):
			r.log.InfoContext(ctx, "stored stripe customer not found; creating a new one",
				"customer_id", u.StripeCustomerID, "user_id", u.ID)
			if _, err := stripedb.Reconcile(ctx, tx, u, stripedb.CustomerID("")); err != nil {
				return "", fmt.Errorf("%w: clearing customer id: %v", ErrDatabase, err)
			}
		default:
			return "", fmt.Errorf("%w: retrieving customer %s: %w", ErrGateway, u.StripeCustomerID, err)
		}
	}

	cust, err := r.gw.CreateCustomer(ctx, gw.CustomerParams{
		Email:    u.Email,
		Name:     u.Name,
		Metadata: r.metadata(u.ID),
	})
	if err != nil {
		r.log.ErrorContext(ctx, "unable to create stripe customer", "user_id", u.ID, "err", err)
		return "", fmt.Errorf("%w: creating customer for user %d: %w", ErrGateway, u.ID, err)
	}
	if _, err := stripedb.Reconcile(ctx, tx, u, stripedb.CustomerID(cust.ID)); err != nil {
		return "", fmt.Errorf("%w: storing customer id: %v", ErrDatabase, err)
	}
	return cust.ID, nil
}

// GetUserForCustomer returns the locked user linked to customerID. When no user
// carries the id, the customer's metadata is used to find the user and the
// link is healed. found is false when the customer cannot be resolved; only
// database failures are returned as errors.
func (r CustomerResolver) GetUserForCustomer(ctx context.Context, tx stripedb.UserTx, customerID string) (u stripedb.User, found bool, err error) {
	if customerID == "" {
		return stripedb.User{}, false, nil
	}

	u, err = tx.GetUserByCustomerForUpdate(ctx, customerID)
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, stripedb.ErrUserNotFound) {
		return stripedb.User{}, false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	cust, err := r.gw.RetrieveCustomer(ctx, customerID)
	if err != nil {
		r.log.WarnContext(ctx, "customer not found when handling webhook", "customer_id", customerID, "err", err)
		return stripedb.User{}, false, nil
	}
	raw := cust.Metadata[r.metadataKey]
	if raw == "" {
		r.log.WarnContext(ctx, "customer missing user metadata", "customer_id", customerID, "metadata_key", r.metadataKey)
		return stripedb.User{}, false, nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.log.WarnContext(ctx, "customer metadata holds an invalid user id", "customer_id", customerID, "user_id", raw)
		return stripedb.User{}, false, nil
	}

	u, err = tx.GetUserForUpdate(ctx, userID)
	if errors.Is(err, stripedb.ErrUserNotFound) {
		r.log.WarnContext(ctx, "user referenced by customer does not exist", "user_id", userID, "customer_id", customerID)
		return stripedb.User{}, false, nil
	}
	if err != nil {
		return stripedb.User{}, false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := r.LinkUserToCustomer(ctx, tx, &u, customerID); err != nil {
		return stripedb.User{}, false, err
	}
	return u, true, nil
}

// LinkUserToCustomer stores customerID on u. When the link changed, the user
// id is pushed to the customer's metadata; a failed push is only logged.
func (r CustomerResolver) LinkUserToCustomer(ctx context.Context, tx stripedb.UserTx, u *stripedb.User, customerID string) error {
	if customerID == "" {
		return nil
	}
	changed, err := stripedb.Reconcile(ctx, tx, u, stripedb.CustomerID(customerID))
	if err != nil {
		return fmt.Errorf("%w: linking customer %s: %v", ErrDatabase, customerID, err)
	}
	if len(changed) == 0 {
		return nil
	}
	if err := r.gw.UpdateCustomerMetadata(ctx, customerID, r.metadata(u.ID)); err != nil {
		r.log.WarnContext(ctx, "unable to sync metadata for customer", "customer_id", customerID, "user_id", u.ID, "err", err)
	}
	return nil
}

// ResolveCustomerFromCharge returns the customer id attached to chargeID, or ""
// when the charge is unknown or has no customer.
func (r CustomerResolver) ResolveCustomerFromCharge(ctx context.Context, chargeID string) string {
	if chargeID == "" {
		return ""
	}
	ch, err := r.gw.RetrieveCharge(ctx, chargeID)
	if err != nil {
		r.log.WarnContext(ctx, "unable to retrieve charge", "charge_id", chargeID, "err", err)
		return ""
	}
	return ch.CustomerID
}
