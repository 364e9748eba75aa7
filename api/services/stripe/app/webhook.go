package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

func (s serviceImpl) ReceiveWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gw.ConstructEvent(payload, sigHeader)
	if err != nil {
		s.log.WarnContext(ctx, "rejected stripe webhook", "err", err)
		return fmt.Errorf("%w: %w", ErrBadEvent, err)
	}
	s.log.InfoContext(ctx, "stripe webhook received", "type", event.Type, "event_id", event.ID)
	return s.HandleEvent(ctx, event)
}

// HandleEvent routes a verified event to its handler. Unknown types and
// undecodable objects are logged and dropped; only infrastructure failures
// are returned.
func (s serviceImpl) HandleEvent(ctx context.Context, event gw.Event) error {
	switch event.Type {
	case EventCheckoutSessionCompleted, EventCheckoutSessionAsyncPaymentSucceeded:
		var session checkoutSessionObject
		if !s.decode(ctx, event, &session) {
			return nil
		}
		return s.handleCheckoutSession(ctx, session)
	case EventSubscriptionDeleted:
		var sub subscriptionObject
		if !s.decode(ctx, event, &sub) {
			return nil
		}
		return s.handleSubscriptionDeleted(ctx, sub)
	case EventSubscriptionUpdated:
		var sub subscriptionObject
		if !s.decode(ctx, event, &sub) {
			return nil
		}
		return s.handleSubscriptionUpdated(ctx, sub)
	case EventSubscriptionPaused, EventSubscriptionResumed:
		var sub subscriptionObject
		if !s.decode(ctx, event, &sub) {
			return nil
		}
		return s.handleSubscriptionPause(ctx, sub, event.Type == EventSubscriptionPaused)
	case EventChargeDisputeCreated:
		var dispute disputeObject
		if !s.decode(ctx, event, &dispute) {
			return nil
		}
		return s.handleDisputeCreated(ctx, dispute)
	case EventInvoiceUpcoming:
		var invoice invoiceObject
		if !s.decode(ctx, event, &invoice) {
			return nil
		}
		return s.handleInvoiceUpcoming(ctx, invoice)
	default:
		s.log.DebugContext(ctx, "unhandled stripe event", "type", event.Type, "event_id", event.ID)
		return nil
	}
}

func (s serviceImpl) decode(ctx context.Context, event gw.Event, v any) bool {
	raw := event.Object
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.WarnContext(ctx, "unable to decode stripe event object", "type", event.Type, "event_id", event.ID, "err", err)
		return false
	}
	return true
}

func (s serviceImpl) handleCheckoutSession(ctx context.Context, session checkoutSessionObject) error {
	rawUserID := session.Metadata[s.metadataKey]
	if rawUserID == "" {
		s.log.WarnContext(ctx, "checkout session missing user metadata", "session_id", session.ID)
		return nil
	}
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		s.log.WarnContext(ctx, "checkout session holds an invalid user id", "session_id", session.ID, "user_id", rawUserID)
		return nil
	}

	return s.inTx(ctx, func(tx stripedb.UserTx) error {
		u, err := tx.GetUserForUpdate(ctx, userID)
		if errors.Is(err, stripedb.ErrUserNotFound) {
			s.log.WarnContext(ctx, "user not found for checkout session", "user_id", userID, "session_id", session.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if err := s.customers.LinkUserToCustomer(ctx, tx, &u, string(session.Customer)); err != nil {
			return err
		}
		if _, err := stripedb.Reconcile(ctx, tx, &u, stripedb.Membership(true, false)); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		s.log.InfoContext(ctx, "membership activated from checkout", "user_id", u.ID, "session_id", session.ID)
		return nil
	})
}

// withCustomerUser runs fn in a transaction holding the row lock of the user
// linked to customerID. Unresolvable customers are logged and skipped.
func (s serviceImpl) withCustomerUser(ctx context.Context, customerID string, fn func(tx stripedb.UserTx, u *stripedb.User) error) error {
	return s.inTx(ctx, func(tx stripedb.UserTx) error {
		u, found, err := s.customers.GetUserForCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if !found {
			s.log.WarnContext(ctx, "no user linked to stripe customer", "customer_id", customerID)
			return nil
		}
		return fn(tx, &u)
	})
}

func (s serviceImpl) reconcile(ctx context.Context, tx stripedb.UserTx, u *stripedb.User, p stripedb.UserPatch) error {
	changed, err := stripedb.Reconcile(ctx, tx, u, p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if len(changed) > 0 {
		s.log.InfoContext(ctx, "membership updated", "user_id", u.ID,
			"has_membership", u.HasMembership, "membership_paused", u.MembershipPaused)
	}
	return nil
}

func (s serviceImpl) handleSubscriptionDeleted(ctx context.Context, sub subscriptionObject) error {
	if sub.Customer == "" {
		s.log.WarnContext(ctx, "subscription missing customer", "subscription_id", sub.ID)
		return nil
	}
	return s.withCustomerUser(ctx, string(sub.Customer), func(tx stripedb.UserTx, u *stripedb.User) error {
		return s.reconcile(ctx, tx, u, stripedb.Membership(false, false))
	})
}

func (s serviceImpl) handleSubscriptionUpdated(ctx context.Context, sub subscriptionObject) error {
	if sub.Customer == "" || sub.Status == "" {
		s.log.WarnContext(ctx, "subscription update missing customer or status", "subscription_id", sub.ID)
		return nil
	}
	return s.withCustomerUser(ctx, string(sub.Customer), func(tx stripedb.UserTx, u *stripedb.User) error {
		m, ok := MembershipForStatus(sub.Status)
		if !ok {
			s.log.InfoContext(ctx, "unhandled subscription status", "status", sub.Status, "user_id", u.ID)
			return nil
		}
		return s.reconcile(ctx, tx, u, m.Patch())
	})
}

func (s serviceImpl) handleSubscriptionPause(ctx context.Context, sub subscriptionObject, paused bool) error {
	if sub.Customer == "" {
		return nil
	}
	return s.withCustomerUser(ctx, string(sub.Customer), func(tx stripedb.UserTx, u *stripedb.User) error {
		return s.reconcile(ctx, tx, u, stripedb.Paused(paused))
	})
}

func (s serviceImpl) handleDisputeCreated(ctx context.Context, dispute disputeObject) error {
	chargeID := string(dispute.Charge)
	customerID := string(dispute.Customer)
	if customerID == "" {
		customerID = s.customers.ResolveCustomerFromCharge(ctx, chargeID)
	}
	if customerID == "" {
		s.log.WarnContext(ctx, "dispute missing customer", "dispute_id", dispute.ID, "charge_id", chargeID)
		return nil
	}
	return s.withCustomerUser(ctx, customerID, func(tx stripedb.UserTx, u *stripedb.User) error {
		if err := s.reconcile(ctx, tx, u, stripedb.Paused(true)); err != nil {
			return err
		}
		s.log.WarnContext(ctx, "membership paused due to dispute",
			"user_id", u.ID,
			"charge_id", chargeID,
			"amount", fmt.Sprintf("%.2f", float64(dispute.Amount)/100))
		return nil
	})
}

func (s serviceImpl) handleInvoiceUpcoming(ctx context.Context, invoice invoiceObject) error {
	if invoice.Customer == "" {
		return nil
	}
	customerID := string(invoice.Customer)
	return s.inTx(ctx, func(tx stripedb.UserTx) error {
		u, found, err := s.customers.GetUserForCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if found {
			s.log.InfoContext(ctx, "upcoming invoice", "user_id", u.ID, "invoice_id", invoice.ID)
		} else {
			s.log.InfoContext(ctx, "upcoming invoice for unlinked customer", "customer_id", customerID, "invoice_id", invoice.ID)
		}
		return nil
	})
}
