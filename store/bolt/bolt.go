package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/store"
)

var _ store.Store = (*Store)(nil)

var (
	bucketIdentity = []byte("identity")
	bucketContacts = []byte("contacts")
	bucketPatterns = []byte("patterns")

	identityKey = []byte("self")
)

// Store is a BoltDB-backed Store implementation.
type Store struct {
	db *bolt.DB
}

// New initialises the Bolt store, creating the file and its parent
// directory as needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketIdentity, bucketContacts, bucketPatterns} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying Bolt DB.
func (s *Store) Close() error {
	return s.db.Close()
}

// Identity fetches the local identity, or store.ErrNotFound before the
// first save.
func (s *Store) Identity(ctx context.Context) (*contact.Identity, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var id *contact.Identity
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketIdentity).Get(identityKey)
		if raw == nil {
			return store.ErrNotFound
		}
		id = &contact.Identity{}
		return json.Unmarshal(raw, id)
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// SaveIdentity stores the local identity.
func (s *Store) SaveIdentity(ctx context.Context, id *contact.Identity) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIdentity).Put(identityKey, payload)
	})
}

// Contacts lists every paired contact.
func (s *Store) Contacts(ctx context.Context) ([]contact.Contact, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var contacts []contact.Contact
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContacts).ForEach(func(k, v []byte) error {
			var c contact.Contact
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			contacts = append(contacts, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// SaveContacts replaces the stored contact list, keyed by pairing code.
func (s *Store) SaveContacts(ctx context.Context, contacts []contact.Contact) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketContacts); err != nil {
			return err
		}
		bkt, err := tx.CreateBucket(bucketContacts)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			payload, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(c.PairCode), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// Patterns lists the saved vibration patterns.
func (s *Store) Patterns(ctx context.Context) ([]store.Pattern, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var patterns []store.Pattern
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPatterns).ForEach(func(k, v []byte) error {
			var p store.Pattern
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			patterns = append(patterns, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return patterns, nil
}

// SavePattern stores or replaces one pattern, keyed by name.
func (s *Store) SavePattern(ctx context.Context, p store.Pattern) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPatterns).Put([]byte(p.Name), payload)
	})
}

// DeletePattern removes one pattern by name. Deleting an unknown name is
// a no-op.
func (s *Store) DeletePattern(ctx context.Context, name string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPatterns).Delete([]byte(name))
	})
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
