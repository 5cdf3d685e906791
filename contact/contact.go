// Package contact implements identity and contact management for a
// vibelink device. The contact list doubles as the inbound allowlist: a
// signal whose sender's pairing code has no matching contact is dropped
// by the gatekeeper.
package contact

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Identity is the local device's own identity. It is created once at
// setup, persisted by the store boundary, and immutable afterwards except
// for the push token.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PairCode    string `json:"pairCode"`
	PushToken   string `json:"fcmToken,omitempty"`
}

// Contact is one paired remote device. PairCode is immutable once the
// pairing exchange completes; Online is derived from presence polling and
// never persisted authoritatively.
type Contact struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	PairCode    string    `json:"pairCode"`
	VisualTag   string    `json:"color"`
	PushToken   string    `json:"fcmToken,omitempty"`
	Online      bool      `json:"-"`
	LastSeen    time.Time `json:"-"`
}

// ErrUnknownContact is returned for lookups of pairing codes that have no
// matching contact.
var ErrUnknownContact = errors.New("contact: unknown pairing code")

// ErrDuplicateContact is returned when adding a pairing code that is
// already on the list.
var ErrDuplicateContact = errors.New("contact: pairing code already paired")

// List is a thread-safe contact list keyed by pairing code.
type List struct {
	mu       sync.RWMutex
	contacts map[string]*Contact
}

// NewList creates an empty contact list.
func NewList() *List {
	return &List{contacts: make(map[string]*Contact)}
}

// Add registers a new contact. The pairing code must be unique.
func (l *List) Add(c Contact) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.contacts[c.PairCode]; exists {
		return ErrDuplicateContact
	}
	stored := c
	l.contacts[c.PairCode] = &stored

	logrus.WithFields(logrus.Fields{
		"function":  "Add",
		"pair_code": c.PairCode,
		"name":      c.DisplayName,
	}).Info("Contact added")

	return nil
}

// Remove deletes the contact with the given pairing code.
func (l *List) Remove(pairCode string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.contacts[pairCode]; !exists {
		return ErrUnknownContact
	}
	delete(l.contacts, pairCode)
	return nil
}

// Get returns a copy of the contact with the given pairing code.
func (l *List) Get(pairCode string) (Contact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.contacts[pairCode]
	if !ok {
		return Contact{}, ErrUnknownContact
	}
	return *c, nil
}

// Has reports whether the pairing code belongs to a contact. This is the
// allowlist check the gatekeeper consults for every inbound signal.
func (l *List) Has(pairCode string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.contacts[pairCode]
	return ok
}

// All returns a snapshot copy of every contact. Long-running loops such as
// the presence tracker work from snapshots rather than holding a reference
// into the list, so membership changes mid-loop cannot corrupt a pass.
func (l *List) All() []Contact {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Contact, 0, len(l.contacts))
	for _, c := range l.contacts {
		out = append(out, *c)
	}
	return out
}

// Len returns the number of contacts.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.contacts)
}

// SetOnline records the presence flag for a contact and returns true if
// the flag actually changed. Setting presence is idempotent; interleaved
// poll completions for the same contact converge on the same state.
func (l *List) SetOnline(pairCode string, online bool) (changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.contacts[pairCode]
	if !ok {
		return false
	}
	if c.Online == online {
		return false
	}
	c.Online = online
	if online {
		c.LastSeen = time.Now()
	}
	return true
}

// SetPushToken updates a contact's push-delivery token and returns true if
// it changed. Presence metadata is the only source of these updates.
func (l *List) SetPushToken(pairCode, token string) (changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.contacts[pairCode]
	if !ok || c.PushToken == token {
		return false
	}
	c.PushToken = token

	logrus.WithFields(logrus.Fields{
		"function":  "SetPushToken",
		"pair_code": pairCode,
	}).Debug("Contact push token updated")

	return true
}

// Replace swaps the entire list contents, used when loading from the
// store boundary.
func (l *List) Replace(contacts []Contact) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.contacts = make(map[string]*Contact, len(contacts))
	for i := range contacts {
		c := contacts[i]
		l.contacts[c.PairCode] = &c
	}
}
