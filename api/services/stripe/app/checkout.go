package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	config "github.com/tbeaudouin05/stripe-membership/api/config"
	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// customerIDForUser locks the user row and returns its Stripe customer id,
// creating the customer on first use.
func (s serviceImpl) customerIDForUser(ctx context.Context, userID int64) (string, error) {
	var customerID string
	err := s.inTx(ctx, func(tx stripedb.UserTx) error {
		u, err := tx.GetUserForUpdate(ctx, userID)
		if errors.Is(err, stripedb.ErrUserNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownUser, userID)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		customerID, err = s.customers.GetOrCreateCustomerID(ctx, tx, &u)
		return err
	})
	return customerID, err
}

// CreateCheckoutSession starts a subscription Checkout for priceID and returns
// the hosted checkout URL.
func (s serviceImpl) CreateCheckoutSession(ctx context.Context, userID int64, priceID string) (string, error) {
	if !s.configured {
		s.log.ErrorContext(ctx, "stripe secret key missing while attempting to create checkout session")
		return "", ErrNotConfigured
	}
	if priceID == "" {
		return "", fmt.Errorf("%w: empty price id", ErrInvalidPrice)
	}

	customerID, err := s.customerIDForUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.gw.RetrievePrice(ctx, priceID); err != nil {
		if errors.Is(err, gw.ErrInvalidRequest) || errors.Is(err, gw.ErrNotFound) {
			s.log.WarnContext(ctx, "stripe price lookup failed", "price_id", priceID, "err", err)
			return "", fmt.Errorf("%w: %s", ErrInvalidPrice, priceID)
		}
		return "", fmt.Errorf("%w: retrieving price %s: %w", ErrGateway, priceID, err)
	}

	metadata := map[string]string{s.metadataKey: strconv.FormatInt(userID, 10)}
	url, err := s.gw.CreateCheckoutSession(ctx, gw.CheckoutParams{
		CustomerID:      customerID,
		PriceID:         priceID,
		Mode:            config.CheckoutMode,
		SuccessURL:      s.frontendURL + "/payments/success",
		CancelURL:       s.frontendURL + "/payments/cancel",
		Metadata:        metadata,
		TrialPeriodDays: config.TrialPeriodDays,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "stripe api error creating checkout session", "user_id", userID, "err", err)
		return "", fmt.Errorf("%w: creating checkout session: %w", ErrGateway, err)
	}
	s.log.InfoContext(ctx, "checkout session created", "user_id", userID, "price_id", priceID)
	return url, nil
}

// CreatePortalSession returns a Stripe customer portal URL for the user.
func (s serviceImpl) CreatePortalSession(ctx context.Context, userID int64) (string, error) {
	if !s.configured {
		s.log.ErrorContext(ctx, "stripe secret key missing while attempting to open customer portal")
		return "", ErrNotConfigured
	}
	customerID, err := s.customerIDForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := s.gw.CreatePortalSession(ctx, customerID, s.frontendURL+"/app")
	if err != nil {
		s.log.ErrorContext(ctx, "stripe api error creating portal session", "user_id", userID, "err", err)
		return "", fmt.Errorf("%w: creating portal session: %w", ErrGateway, err)
	}
	return url, nil
}
