package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	stripeapp "github.com/tbeaudouin05/stripe-membership/api/services/stripe/app"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 20

const stripeSignatureHeader = "Stripe-Signature"

// User-facing checkout failures.
const (
	msgNotConfigured = "Stripe is not configured."
	msgInvalidPrice  = "Invalid price ID. Please verify the configured prices."
	msgCheckoutError = "We could not start the checkout session. Please try again."
	msgUnexpected    = "Unexpected error. Please contact support."
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Service  stripeapp.Service
	Sessions sessions.Store
	// Health reports whether the service can serve traffic; nil means always healthy.
	Health      func(ctx context.Context) error
	FrontendURL string
	LoginURL    string
	// DebugEndpoints enables POST /api/debug/cancel-access; never set in production.
	DebugEndpoints bool
	Logger         *slog.Logger
}

type handlers struct {
	Deps
}

type route struct {
	method, pattern string
	fn              runtime.HandlerFunc
}

// NewRouter returns the central HTTP router for the API.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Service == nil || d.Sessions == nil {
		return nil, errors.New("router: service and session store are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := handlers{Deps: d}

	mux := runtime.NewServeMux()
	routes := []route{
		{http.MethodPost, "/webhook", h.webhook},
		{http.MethodGet, "/checkout/{price_id}", h.checkout},
		{http.MethodGet, "/customer-portal", h.customerPortal},
		{http.MethodGet, "/api/user", h.currentUser},
		{http.MethodGet, "/healthz", h.healthz},
	}
	if d.DebugEndpoints {
		routes = append(routes, route{http.MethodPost, "/api/debug/cancel-access", h.cancelAccess})
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.fn); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return withRequestID(trimTrailingSlash(mux), d.Logger), nil
}

// trimTrailingSlash lets /webhook/ and /webhook reach the same route.
func trimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

func (h handlers) webhook(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.Logger.WarnContext(r.Context(), "unable to read webhook body", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err = h.Service.ReceiveWebhook(r.Context(), payload, r.Header.Get(stripeSignatureHeader))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, stripeapp.ErrBadEvent):
		http.Error(w, "invalid payload", http.StatusBadRequest)
	default:
		h.Logger.ErrorContext(r.Context(), "webhook dispatch failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h handlers) checkout(w http.ResponseWriter, r *http.Request, params map[string]string) {
	userID, ok := SessionUserID(h.Sessions, r)
	if !ok {
		loginRedirect(w, r, h.LoginURL)
		return
	}

	url, err := h.Service.CreateCheckoutSession(r.Context(), userID, params["price_id"])
	switch {
	case err == nil:
		http.Redirect(w, r, url, http.StatusSeeOther)
	case errors.Is(err, stripeapp.ErrUnknownUser):
		loginRedirect(w, r, h.LoginURL)
	case errors.Is(err, stripeapp.ErrNotConfigured):
		http.Error(w, msgNotConfigured, http.StatusInternalServerError)
	case errors.Is(err, stripeapp.ErrInvalidPrice):
		http.Error(w, msgInvalidPrice, http.StatusBadRequest)
	case errors.Is(err, stripeapp.ErrGateway):
		http.Error(w, msgCheckoutError, http.StatusBadRequest)
	default:
		h.Logger.ErrorContext(r.Context(), "unexpected error creating checkout session", "user_id", userID, "err", err)
		http.Error(w, msgUnexpected, http.StatusInternalServerError)
	}
}

func (h handlers) customerPortal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := SessionUserID(h.Sessions, r)
	if !ok {
		loginRedirect(w, r, h.LoginURL)
		return
	}

	url, err := h.Service.CreatePortalSession(r.Context(), userID)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "customer portal unavailable", "user_id", userID, "err", err)
		http.Redirect(w, r, h.FrontendURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h handlers) healthz(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			h.Logger.ErrorContext(r.Context(), "health check failed", "err", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
