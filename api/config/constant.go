package config

import (
	"log"
	"strings"
	"time"
)

const (
	// ProdDbId is the identifier for the production database
	ProdDbId = "old-cloud"

	// DefaultSubscriberMetadataKey is the Stripe metadata key holding the local user id.
	DefaultSubscriberMetadataKey = "user_id"

	// CheckoutMode is the Stripe Checkout mode used for memberships.
	CheckoutMode = "subscription"

	// TrialPeriodDays is the trial granted on new subscriptions started through Checkout.
	TrialPeriodDays = 7

	DefaultStripeTimeout = 30 * time.Second
)

// CheckNotProdDB aborts immediately if the configured database URL contains ProdDbId.
// This should be called at the start of any test that interacts with the database.
func CheckNotProdDB() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DatabaseURL is not configured")
	}
	if strings.Contains(cfg.DatabaseURL, ProdDbId) {
		log.Fatalf("Tests aborted: DatabaseURL contains production identifier %s", ProdDbId)
	}
}
