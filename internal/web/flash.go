package web

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "movieranker-session"

// NewCookieStore returns a signed cookie store for one-shot flash messages.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Flashes carries messages across a redirect.
type Flashes struct {
	store sessions.Store
}

// NewFlashes wraps a session store.
func NewFlashes(store sessions.Store) *Flashes {
	return &Flashes{store: store}
}

// Add queues msg for the next page the client renders.
func (f *Flashes) Add(w http.ResponseWriter, r *http.Request, msg string) error {
	// Get still returns a fresh session when the cookie cannot be decoded.
	session, _ := f.store.Get(r, sessionName)
	session.AddFlash(msg)
	return session.Save(r, w)
}

// Pop returns and clears any pending messages.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) []string {
	session, err := f.store.Get(r, sessionName)
	if err != nil && session == nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
