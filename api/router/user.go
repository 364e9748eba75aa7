package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	stripeapp "github.com/tbeaudouin05/stripe-membership/api/services/stripe/app"
	gw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway"
)

// periodEndLayout renders timestamps as ISO-8601 in UTC with an explicit offset.
const periodEndLayout = "2006-01-02T15:04:05+00:00"

type userOut struct {
	ID               int64            `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	HasMembership    bool             `json:"has_membership"`
	MembershipPaused bool             `json:"membership_paused"`
	IsMember         bool             `json:"is_member"`
	Subscription     *subscriptionOut `json:"subscription"`
}

type subscriptionOut struct {
	Status            string  `json:"status"`
	CurrentPeriodEnd  *string `json:"current_period_end"`
	CancelAtPeriodEnd bool    `json:"cancel_at_period_end"`
}

func newUserOut(m stripeapp.Member) userOut {
	name := m.Name
	if name == "" {
		name, _, _ = strings.Cut(m.Email, "@")
	}
	return userOut{
		ID:               m.ID,
		Email:            m.Email,
		Name:             name,
		HasMembership:    m.HasMembership,
		MembershipPaused: m.MembershipPaused,
		IsMember:         m.IsMember(),
		Subscription:     newSubscriptionOut(m.Subscription),
	}
}

func newSubscriptionOut(sub *gw.Subscription) *subscriptionOut {
	if sub == nil {
		return nil
	}
	out := &subscriptionOut{Status: sub.Status, CancelAtPeriodEnd: sub.CancelAtPeriodEnd}
	if !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd.UTC().Format(periodEndLayout)
		out.CurrentPeriodEnd = &end
	}
	return out
}

type messageOut struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h handlers) currentUser(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := SessionUserID(h.Sessions, r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageOut{Message: "unauthorized"})
		return
	}
	m, err := h.Service.GetMember(r.Context(), userID)
	if errors.Is(err, stripeapp.ErrUnknownUser) {
		writeJSON(w, http.StatusUnauthorized, messageOut{Message: "unauthorized"})
		return
	}
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "unable to load user", "user_id", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, messageOut{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, newUserOut(m))
}

func (h handlers) cancelAccess(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := SessionUserID(h.Sessions, r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageOut{Message: "unauthorized"})
		return
	}
	if err := h.Service.RevokeMembership(r.Context(), userID); err != nil {
		h.Logger.ErrorContext(r.Context(), "unable to cancel access", "user_id", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, messageOut{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, messageOut{Message: "Access cancelled"})
}
