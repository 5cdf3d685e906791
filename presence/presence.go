// Package presence implements polling-based presence detection for a
// device's contacts. Polling, not event subscription, is the source of
// truth: transport presence events can be missed across reconnects and
// backgrounding, and the periodic poll is the resynchronization mechanism.
package presence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
	"github.com/vibelink/vibelink/transport"
)

// DefaultInterval is the default gap between poll passes.
const DefaultInterval = 10 * time.Second

// queryTimeout bounds one presence query so a hung transport call cannot
// stall a contact's polling slot past the next pass.
const queryTimeout = 5 * time.Second

// Metadata is the blob a device attaches when entering presence on its own
// channel. Contacts discover push-token changes from it.
type Metadata struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	PushToken string `json:"fcmToken,omitempty"`
}

// EncodeMetadata serializes presence metadata.
func EncodeMetadata(m Metadata) []byte {
	data, _ := json.Marshal(m)
	return data
}

// DecodeMetadata parses presence metadata, returning the zero value for
// anything unparseable; presence must keep working against peers that
// attach no metadata at all.
func DecodeMetadata(data []byte) Metadata {
	var m Metadata
	if len(data) == 0 {
		return m
	}
	_ = json.Unmarshal(data, &m)
	return m
}

// Apply receives the outcome of one contact poll. online is true iff at
// least one member is present on the contact's channel; pushToken is the
// token found in presence metadata, empty when none was attached.
// Implementations must be idempotent: poll completions for different
// contacts land concurrently and in no particular order.
type Apply func(pairCode string, online bool, pushToken string)

// Config wires a Tracker.
type Config struct {
	Transport transport.Transport
	Interval  time.Duration

	// Contacts returns the current contact snapshot. It is called once
	// per pass, so pairing changes take effect on the next tick rather
	// than being read through a stale reference held at start time.
	Contacts func() []contact.Contact

	Apply Apply
}

// Tracker periodically polls transport presence for every contact.
type Tracker struct {
	cfg    Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTracker creates a tracker; call Start to begin polling.
func NewTracker(cfg Config) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Tracker{cfg: cfg}
}

// Start launches the poll loop. An immediate first pass runs before the
// interval begins. Start is a no-op if the tracker is already running.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		t.Poll(ctx)
		ticker := time.NewTicker(t.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Poll(ctx)
			}
		}
	}()

	logrus.WithFields(logrus.Fields{
		"function": "Start",
		"interval": t.cfg.Interval,
	}).Info("Presence tracker started")
}

// Stop cancels the poll loop and waits for in-flight queries to finish.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
}

// Poll runs one pass over the current contact snapshot. Each contact is
// queried independently; one failing query neither blocks nor fails the
// others. Exposed so callers can force a resync (for example right after
// adding a contact).
func (t *Tracker) Poll(ctx context.Context) {
	contacts := t.cfg.Contacts()

	var wg sync.WaitGroup
	for _, c := range contacts {
		wg.Add(1)
		go func(c contact.Contact) {
			defer wg.Done()
			t.pollContact(ctx, c)
		}(c)
	}
	wg.Wait()
}

func (t *Tracker) pollContact(ctx context.Context, c contact.Contact) {
	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	members, err := t.cfg.Transport.PresenceGet(qctx, crypto.DeriveChannelName(c.PairCode))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "pollContact",
			"pair_code": c.PairCode,
			"error":     err,
		}).Warn("Presence query failed")
		return
	}

	online := len(members) > 0
	var token string
	for _, m := range members {
		if meta := DecodeMetadata(m.Data); meta.PushToken != "" {
			token = meta.PushToken
			break
		}
	}

	t.cfg.Apply(c.PairCode, online, token)
}
