package app

import (
	"context"
	"errors"
	"fmt"

	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// Member is a user with the subscription Stripe currently bills them for.
// Subscription is nil when there is none or Stripe could not be reached.
type Member struct {
	stripedb.User
	Subscription *gw.Subscription
}

// liveSubscriptionStatuses are the statuses worth showing to a member.
var liveSubscriptionStatuses = map[string]bool{
	"active":   true,
	"trialing": true,
	"past_due": true,
}

func (s serviceImpl) GetMember(ctx context.Context, userID int64) (Member, error) {
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, stripedb.ErrUserNotFound) {
		return Member{}, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	if err != nil {
		return Member{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return Member{User: u, Subscription: s.liveSubscription(ctx, u)}, nil
}

// liveSubscription is best effort: a Stripe failure leaves the member without one.
func (s serviceImpl) liveSubscription(ctx context.Context, u stripedb.User) *gw.Subscription {
	if !s.configured || u.StripeCustomerID == "" {
		return nil
	}
	subs, err := s.gw.ListSubscriptions(ctx, u.StripeCustomerID)
	if err != nil {
		s.log.DebugContext(ctx, "unable to list subscriptions", "user_id", u.ID, "customer_id", u.StripeCustomerID, "err", err)
		return nil
	}
	for _, sub := range subs {
		if liveSubscriptionStatuses[sub.Status] {
			sub := sub
			return &sub
		}
	}
	return nil
}

func (s serviceImpl) RevokeMembership(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx stripedb.UserTx) error {
		u, err := tx.GetUserForUpdate(ctx, userID)
		if errors.Is(err, stripedb.ErrUserNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownUser, userID)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if err := s.reconcile(ctx, tx, &u, stripedb.Membership(false, false)); err != nil {
			return err
		}
		s.log.InfoContext(ctx, "membership revoked", "user_id", userID)
		return nil
	})
}
