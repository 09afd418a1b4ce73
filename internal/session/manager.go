package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const CookieName = "emconsole_session"

// Manager ties a Store to the browser cookie.
type Manager struct {
	store  Store
	codec  *CookieCodec
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, codec *CookieCodec, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{store: store, codec: codec, ttl: ttl, secure: secure, now: time.Now}
}

func (m *Manager) Store() Store { return m.store }

// Start stores rec under a freshly minted browser id and sets the cookie. Any
// session the request already carried is deleted.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, rec Record) (Record, string, error) {
	if previous := m.browserID(r); previous != "" {
		if err := m.store.Delete(r.Context(), previous); err != nil && !errors.Is(err, ErrNotFound) {
			return Record{}, "", err
		}
	}
	browserID := NewBrowserID()
	now := m.now().UTC()
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(m.ttl)
	rec = prepare(rec)

	if err := m.store.Put(r.Context(), browserID, rec); err != nil {
		return Record{}, "", err
	}
	value, err := m.codec.Encode(browserID, m.ttl)
	if err != nil {
		return Record{}, "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return rec, browserID, nil
}

// Load returns the session for the request. ErrNotFound covers a missing
// cookie, an invalid cookie, and an absent or expired record.
func (m *Manager) Load(r *http.Request) (Record, string, error) {
	browserID := m.browserID(r)
	if browserID == "" {
		return Record{}, "", ErrNotFound
	}
	rec, err := m.store.Get(r.Context(), browserID)
	if err != nil {
		return Record{}, browserID, err
	}
	return rec, browserID, nil
}

// End deletes the browser's session and expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var err error
	if browserID := m.browserID(r); browserID != "" {
		err = m.store.Delete(r.Context(), browserID)
	}
	m.ClearCookie(w)
	return err
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Sweep purges expired records when the store supports it.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	sweeper, ok := m.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sweeper.Sweep(ctx)
}

func (m *Manager) browserID(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

// IsMissing reports whether err means "no session" rather than a store failure.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidCookie)
}
