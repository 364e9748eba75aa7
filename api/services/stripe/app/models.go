package app

import (
	"encoding/json"

	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
)

// Webhook event types handled by the dispatcher.
const (
	EventCheckoutSessionCompleted             = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventSubscriptionDeleted                  = "customer.subscription.deleted"
	EventSubscriptionUpdated                  = "customer.subscription.updated"
	EventSubscriptionPaused                   = "customer.subscription.paused"
	EventSubscriptionResumed                  = "customer.subscription.resumed"
	EventChargeDisputeCreated                 = "charge.dispute.created"
	EventInvoiceUpcoming                      = "invoice.upcoming"
)

// Subscription statuses as reported by Stripe.
const (
	StatusTrialing          = "trialing"
	StatusActive            = "active"
	StatusPastDue           = "past_due"
	StatusUnpaid            = "unpaid"
	StatusPaused            = "paused"
	StatusCanceled          = "canceled"
	StatusIncompleteExpired = "incomplete_expired"
	StatusIncomplete        = "incomplete"
)

// Membership is the pair of membership flags stored on a user.
type Membership struct {
	Has    bool
	Paused bool
}

// Patch returns the user patch setting both flags.
func (m Membership) Patch() stripedb.UserPatch {
	return stripedb.Membership(m.Has, m.Paused)
}

// MembershipForStatus maps a subscription status to membership flags. The
// second result is false for statuses that must leave the user unchanged.
func MembershipForStatus(status string) (Membership, bool) {
	switch status {
	case StatusTrialing, StatusActive:
		return Membership{Has: true, Paused: false}, true
	case StatusPastDue, StatusUnpaid, StatusPaused:
		return Membership{Has: true, Paused: true}, true
	case StatusCanceled, StatusIncompleteExpired:
		return Membership{Has: false, Paused: false}, true
	default:
		return Membership{}, false
	}
}

// objectID decodes an expandable Stripe reference: either a bare id string or
// an expanded object carrying an "id" field.
type objectID string

func (o *objectID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = objectID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*o = objectID(obj.ID)
	return nil
}

type checkoutSessionObject struct {
	ID       string            `json:"id"`
	Customer objectID          `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID       string   `json:"id"`
	Customer objectID `json:"customer"`
	Status   string   `json:"status"`
}

type disputeObject struct {
	ID       string   `json:"id"`
	Charge   objectID `json:"charge"`
	Customer objectID `json:"customer"`
	// Amount is in minor units.
	Amount int64 `json:"amount"`
}

type invoiceObject struct {
	ID       string   `json:"id"`
	Customer objectID `json:"customer"`
}
