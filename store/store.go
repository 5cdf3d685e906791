package store

import (
	"context"

	"github.com/vibelink/vibelink/contact"
)

// Pattern is a user-composed vibration pattern that can be sent as a
// touch signal.
type Pattern struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Data  []int  `json:"data"`
}

// Store abstracts device persistence: the local identity, the paired
// contact list, and saved vibration patterns. Chat history is
// deliberately absent; conversations live only in memory.
type Store interface {
	Identity(ctx context.Context) (*contact.Identity, error)
	SaveIdentity(ctx context.Context, id *contact.Identity) error

	Contacts(ctx context.Context) ([]contact.Contact, error)
	SaveContacts(ctx context.Context, contacts []contact.Contact) error

	Patterns(ctx context.Context) ([]Pattern, error)
	SavePattern(ctx context.Context, p Pattern) error
	DeletePattern(ctx context.Context, name string) error

	Close() error
}
