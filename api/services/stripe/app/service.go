package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/tbeaudouin05/stripe-membership/api/config"
	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// Service defines the business operations for the Stripe domain.
type Service interface {
	// ReceiveWebhook verifies and decodes a webhook body, then dispatches it.
	// Verification failures wrap ErrBadEvent.
	ReceiveWebhook(ctx context.Context, payload []byte, sigHeader string) error
	HandleEvent(ctx context.Context, event gw.Event) error
	CreateCheckoutSession(ctx context.Context, userID int64, priceID string) (string, error)
	CreatePortalSession(ctx context.Context, userID int64) (string, error)
	// GetMember returns the user's current billing state and, when Stripe is
	// configured, their live subscription.
	GetMember(ctx context.Context, userID int64) (Member, error)
	// RevokeMembership clears both membership flags; used by the debug endpoint.
	RevokeMembership(ctx context.Context, userID int64) error
}

// UserRepository reads users and runs users work inside a row-locking transaction.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (stripedb.User, error)
	InTx(ctx context.Context, fn func(tx stripedb.UserTx) error) error
}

// Options configures the service. Zero values fall back to defaults.
type Options struct {
	// Configured is false when no Stripe secret key is set; checkout and portal then fail fast.
	Configured  bool
	MetadataKey string
	FrontendURL string
	Logger      *slog.Logger
}

type serviceImpl struct {
	users       UserRepository
	gw          gw.StripeGateway
	customers   CustomerResolver
	configured  bool
	metadataKey string
	frontendURL string
	log         *slog.Logger
}

func NewService(users UserRepository, g gw.StripeGateway, opts Options) Service {
	if opts.MetadataKey == "" {
		opts.MetadataKey = config.DefaultSubscriberMetadataKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return serviceImpl{
		users:       users,
		gw:          g,
		customers:   NewCustomerResolver(g, opts.MetadataKey, opts.Logger),
		configured:  opts.Configured,
		metadataKey: opts.MetadataKey,
		frontendURL: opts.FrontendURL,
		log:         opts.Logger,
	}
}

// inTx runs fn in a users transaction and tags unclassified failures
// (begin/commit) as database errors.
func (s serviceImpl) inTx(ctx context.Context, fn func(tx stripedb.UserTx) error) error {
	err := s.users.InTx(ctx, fn)
	if err == nil || errors.Is(err, ErrDatabase) || errors.Is(err, ErrGateway) ||
		errors.Is(err, ErrUnknownUser) || errors.Is(err, ErrInvalidPrice) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDatabase, err)
}
