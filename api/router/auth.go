package router

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie shared with the identity service.
const SessionName = "membership-session"

const sessionUserIDKey = "user_id"

// NewSessionStore returns a cookie store signed with secret. An empty secret
// gets a random per-process key, which only suits local development since
// sessions do not survive a restart.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionUserID returns the authenticated user id carried by the session.
func SessionUserID(store sessions.Store, r *http.Request) (int64, bool) {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		return 0, false
	}
	switch id := sess.Values[sessionUserIDKey].(type) {
	case int64:
		return id, id > 0
	case int:
		return int64(id), id > 0
	default:
		return 0, false
	}
}

// SetSessionUser marks the session as belonging to userID.
func SetSessionUser(store sessions.Store, w http.ResponseWriter, r *http.Request, userID int64) error {
	if userID <= 0 {
		return errors.New("invalid user id")
	}
	sess, _ := store.Get(r, SessionName)
	sess.Values[sessionUserIDKey] = userID
	return sess.Save(r, w)
}

// loginRedirect sends the browser to loginURL, preserving the requested path.
func loginRedirect(w http.ResponseWriter, r *http.Request, loginURL string) {
	http.Redirect(w, r, loginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}
