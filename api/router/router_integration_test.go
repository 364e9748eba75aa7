package router_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v72"
	bootstrap "github.com/tbeaudouin05/stripe-membership/api/bootstrap"
	config "github.com/tbeaudouin05/stripe-membership/api/config"
	database "github.com/tbeaudouin05/stripe-membership/api/database"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// newTestApp wires the real application against DATABASE_URL.
func newTestApp(t *testing.T) (*bootstrap.App, *httptest.Server) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in -short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	config.CheckNotProdDB()
	cfg := loadConfig(t)
	require.NoError(t, database.Migrate(cfg.DatabaseURL, "up"))

	app, err := bootstrap.Init(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = app.Close()
	})
	return app, ts
}

func postWebhook(t *testing.T, base, secret string, payload []byte) *http.Response {
	t.Helper()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, base+"/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		ts := time.Now().Unix()
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
		req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestWebhookHTTP_Integration_RejectsGarbage(t *testing.T) {
	_, ts := newTestApp(t)

	// Not JSON and unsigned: rejected whether or not a secret is configured.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, ts.URL+"/webhook", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookHTTP_Integration_UntypedEventIsAcknowledged(t *testing.T) {
	app, ts := newTestApp(t)

	resp := postWebhook(t, ts.URL, app.Config.StripeWebhookSecret, []byte(`{"id":"evt_untyped","object":"event","data":{"object":{}}}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookHTTP_Integration_CheckoutActivatesMembership(t *testing.T) {
	app, ts := newTestApp(t)
	ctx := context.Background()

	u, err := app.Users.CreateUser(ctx, fmt.Sprintf("router-it-%d@example.com", time.Now().UnixNano()), "Router IT")
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Users.DeleteUser(ctx, u.ID) })

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_it","object":"event","api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":"cs_it","customer":null,"metadata":{%q:"%d"}}}}`,
		stripe.APIVersion, app.Config.StripeSubscriberMetadataKey, u.ID))
	resp := postWebhook(t, ts.URL, app.Config.StripeWebhookSecret, payload)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := app.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasMembership)
	assert.False(t, got.MembershipPaused)
}

func TestHealthzHTTP_Integration(t *testing.T) {
	_, ts := newTestApp(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
