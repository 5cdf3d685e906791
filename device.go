package vibelink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
	"github.com/vibelink/vibelink/gatekeeper"
	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/presence"
	"github.com/vibelink/vibelink/session"
	"github.com/vibelink/vibelink/signal"
	"github.com/vibelink/vibelink/store"
	"github.com/vibelink/vibelink/transport"
)

// publishTimeout bounds one outbound publish call.
const publishTimeout = 10 * time.Second

// Options contains configuration options for creating a Device.
type Options struct {
	// Identity is the local device identity. PairCode is required; a
	// missing ID is generated.
	Identity contact.Identity

	// Transport carries signals and presence. Required. The device owns
	// it and closes it on Kill.
	Transport transport.Transport

	// Store, when set, persists the contact list across restarts.
	Store store.Store

	// Feedback receives every locally felt haptic pattern. Defaults to
	// haptic.Discard.
	Feedback haptic.Sink

	PresenceInterval time.Duration
	InviteGap        time.Duration
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		Feedback:         haptic.Discard,
		PresenceInterval: presence.DefaultInterval,
		InviteGap:        gatekeeper.DefaultInviteGap,
	}
}

// TouchCallback is called when a contact's touch arrives.
type TouchCallback func(from contact.Contact, touch signal.TouchPayload)

// ChatCallback is called when a chat message is appended to a
// conversation, including the undecryptable placeholder.
type ChatCallback func(msg ChatMessage)

// PresenceCallback is called when a contact's online state changes.
type PresenceCallback func(c contact.Contact)

// FeedbackCallback observes every haptic pattern the device plays.
type FeedbackCallback func(p haptic.Pattern)

// DropCallback is called when an inbound payload is rejected, with the
// reason. sig may be nil when the payload never parsed.
type DropCallback func(sig *signal.Signal, reason error)

// Device is one end of a pairing. All inbound signals, session timers,
// and callbacks run on a single internal event queue, so callback code
// never needs its own locking against session state.
type Device struct {
	opts     *Options
	identity contact.Identity
	channel  string
	trans    transport.Transport
	contacts *contact.List
	gate     *gatekeeper.Gatekeeper
	tracker  *presence.Tracker

	// keys maps a contact's pairing code to the derived pair key. Read
	// from the transport goroutine during decode.
	keysMu sync.RWMutex
	keys   map[string][]byte

	// sessions and chats are touched only on the event queue.
	sessions map[string]*session.Controller
	chats    map[string][]ChatMessage

	touchCallback    TouchCallback
	chatCallback     ChatCallback
	presenceCallback PresenceCallback
	feedbackCallback FeedbackCallback
	dropCallback     DropCallback

	events chan func()
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Device, subscribes it to its derived channel, announces
// presence, and starts the presence tracker and event queue.
func New(options *Options) (*Device, error) {
	if options == nil {
		return nil, errors.New("vibelink: options are required")
	}
	if options.Transport == nil {
		return nil, errors.New("vibelink: transport is required")
	}
	if err := crypto.ValidatePairCode(options.Identity.PairCode); err != nil {
		return nil, err
	}
	if options.Identity.ID == "" {
		options.Identity.ID = crypto.GenerateID()
	}
	if options.Feedback == nil {
		options.Feedback = haptic.Discard
	}
	if options.PresenceInterval <= 0 {
		options.PresenceInterval = presence.DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Device{
		opts:     options,
		identity: options.Identity,
		channel:  crypto.DeriveChannelName(options.Identity.PairCode),
		trans:    options.Transport,
		contacts: contact.NewList(),
		keys:     make(map[string][]byte),
		sessions: make(map[string]*session.Controller),
		chats:    make(map[string][]ChatMessage),
		events:   make(chan func(), 64),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.gate = gatekeeper.New(gatekeeper.Config{
		SelfUID:   d.identity.ID,
		SelfCode:  d.identity.PairCode,
		Allow:     d.contacts.Has,
		Feedback:  haptic.SinkFunc(d.playFeedback),
		InviteGap: options.InviteGap,
	})
	d.gate.Register(signal.CategoryTouch, d.handleTouch)
	d.gate.Register(signal.CategoryChat, d.handleChat)
	for _, cat := range []signal.Category{
		signal.CategoryHeartbeat,
		signal.CategoryBreathe,
		signal.CategoryDraw,
		signal.CategoryMatch,
		signal.CategoryTicTacToe,
	} {
		d.gate.Register(cat, d.handleSession)
	}

	if options.Store != nil {
		saved, err := options.Store.Contacts(ctx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("vibelink: load contacts: %w", err)
		}
		d.contacts.Replace(saved)
		for _, c := range saved {
			d.keys[c.PairCode] = crypto.DerivePairKey(d.identity.PairCode, c.PairCode)
		}
	}

	if err := d.trans.Subscribe(d.channel, d.handleRaw); err != nil {
		cancel()
		return nil, fmt.Errorf("vibelink: subscribe: %w", err)
	}

	meta := presence.EncodeMetadata(presence.Metadata{
		UID:       d.identity.ID,
		Name:      d.identity.DisplayName,
		PushToken: d.identity.PushToken,
	})
	if err := d.trans.PresenceEnter(ctx, d.channel, meta); err != nil {
		cancel()
		return nil, fmt.Errorf("vibelink: presence enter: %w", err)
	}

	d.tracker = presence.NewTracker(presence.Config{
		Transport: d.trans,
		Interval:  options.PresenceInterval,
		Contacts:  d.contacts.All,
		Apply:     d.applyPresence,
	})

	d.wg.Add(1)
	go d.loop()
	d.tracker.Start()

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"channel":  d.channel,
		"uid":      d.identity.ID,
	}).Info("Device started")

	return d, nil
}

// Identity returns the local identity.
func (d *Device) Identity() contact.Identity { return d.identity }

// Channel returns the derived channel name this device listens on.
func (d *Device) Channel() string { return d.channel }

// Kill stops the device and releases its transport. Queued work that
// has not run yet is discarded.
func (d *Device) Kill() {
	d.tracker.Stop()
	d.cancel()
	d.wg.Wait()

	// The loop has exited and post drops everything now, so session
	// state can be torn down inline.
	for _, s := range d.sessions {
		s.Close()
	}
	d.sessions = nil

	if err := d.trans.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Kill",
			"error":    err,
		}).Warn("Transport close failed")
	}

	logrus.WithFields(logrus.Fields{
		"function": "Kill",
		"uid":      d.identity.ID,
	}).Info("Device stopped")
}

// OnTouch sets the callback for inbound touches.
func (d *Device) OnTouch(callback TouchCallback) { d.touchCallback = callback }

// OnChatMessage sets the callback for appended chat messages.
func (d *Device) OnChatMessage(callback ChatCallback) { d.chatCallback = callback }

// OnPresenceChange sets the callback for contact online transitions.
func (d *Device) OnPresenceChange(callback PresenceCallback) { d.presenceCallback = callback }

// OnFeedback sets the callback observing played haptic patterns.
func (d *Device) OnFeedback(callback FeedbackCallback) { d.feedbackCallback = callback }

// OnSignalDropped sets the callback for rejected inbound payloads.
func (d *Device) OnSignalDropped(callback DropCallback) { d.dropCallback = callback }

// AddContact pairs with another device. The pair key and channel are
// derived immediately; when a store is configured the contact list is
// persisted.
func (d *Device) AddContact(c contact.Contact) error {
	if err := crypto.ValidatePairCode(c.PairCode); err != nil {
		return err
	}
	if c.PairCode == d.identity.PairCode {
		return errors.New("vibelink: cannot pair with own code")
	}
	if err := d.contacts.Add(c); err != nil {
		return err
	}

	d.keysMu.Lock()
	d.keys[c.PairCode] = crypto.DerivePairKey(d.identity.PairCode, c.PairCode)
	d.keysMu.Unlock()

	return d.persistContacts()
}

// RemoveContact unpairs, discarding the derived key, the session, and
// the conversation.
func (d *Device) RemoveContact(pairCode string) error {
	if err := d.contacts.Remove(pairCode); err != nil {
		return err
	}

	d.keysMu.Lock()
	delete(d.keys, pairCode)
	d.keysMu.Unlock()

	d.post(func() {
		if s, ok := d.sessions[pairCode]; ok {
			s.Close()
			delete(d.sessions, pairCode)
		}
		delete(d.chats, pairCode)
	})

	return d.persistContacts()
}

// Contacts returns a snapshot of the paired contacts.
func (d *Device) Contacts() []contact.Contact { return d.contacts.All() }

// WithSession runs fn on the device event queue with the session
// controller for the given contact, creating it on first use. The
// controller must only ever be touched inside fn.
func (d *Device) WithSession(pairCode string, fn func(s *session.Controller)) error {
	if !d.contacts.Has(pairCode) {
		return contact.ErrUnknownContact
	}
	d.post(func() { fn(d.sessionFor(pairCode)) })
	return nil
}

func (d *Device) persistContacts() error {
	if d.opts.Store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return d.opts.Store.SaveContacts(ctx, d.contacts.All())
}

func (d *Device) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case fn := <-d.events:
			fn()
		}
	}
}

// post enqueues fn onto the event queue. Posts after Kill are dropped.
func (d *Device) post(fn func()) {
	select {
	case d.events <- fn:
	case <-d.ctx.Done():
	}
}

// handleRaw is the transport subscription handler. It decodes off the
// queue and posts the result onto it.
func (d *Device) handleRaw(data []byte) {
	sig, err := signal.Decode(data, d.keyFor)
	if err != nil {
		var de *signal.DecodeError
		if errors.As(err, &de) && de.Stage == "decrypt" && sig != nil {
			// The envelope parsed, only the chat text is lost. Route it
			// through the gate anyway so the conversation shows an
			// opaque placeholder instead of silence.
			sig.Payload = &signal.ChatPayload{Text: UndecryptableText, Undecryptable: true}
			logrus.WithFields(logrus.Fields{
				"function": "handleRaw",
				"sender":   sig.SenderCode,
				"error":    err,
			}).Warn("Chat payload could not be decrypted")
			d.post(func() { d.process(sig) })
			return
		}
		logrus.WithFields(logrus.Fields{
			"function": "handleRaw",
			"error":    err,
		}).Warn("Inbound payload rejected")
		d.post(func() { d.notifyDropped(sig, err) })
		return
	}
	d.post(func() { d.process(sig) })
}

func (d *Device) process(sig *signal.Signal) {
	if err := d.gate.Process(sig); err != nil {
		d.notifyDropped(sig, err)
	}
}

func (d *Device) notifyDropped(sig *signal.Signal, reason error) {
	if d.dropCallback != nil {
		d.dropCallback(sig, reason)
	}
}

func (d *Device) keyFor(senderCode string) ([]byte, error) {
	d.keysMu.RLock()
	key, ok := d.keys[senderCode]
	d.keysMu.RUnlock()
	if !ok {
		return nil, contact.ErrUnknownContact
	}
	return key, nil
}

// playFeedback fans one pattern out to the configured sink and the
// observer callback. Runs on the event queue.
func (d *Device) playFeedback(p haptic.Pattern) {
	if d.feedbackCallback != nil {
		d.feedbackCallback(p)
	}
	d.opts.Feedback.Emit(p)
}

// handleTouch runs on the event queue for authorized touch.data signals.
func (d *Device) handleTouch(sig *signal.Signal) {
	p := sig.Touch()
	if p == nil || d.touchCallback == nil {
		return
	}
	from, err := d.contacts.Get(sig.SenderCode)
	if err != nil {
		from = contact.Contact{PairCode: sig.SenderCode, DisplayName: sig.SenderName}
	}
	d.touchCallback(from, *p)
}

// handleSession routes shared-mode signals to the per-contact controller.
func (d *Device) handleSession(sig *signal.Signal) {
	d.sessionFor(sig.SenderCode).HandleSignal(sig)
}

// sessionFor returns the controller for a peer, creating it lazily. Only
// called on the event queue.
func (d *Device) sessionFor(pairCode string) *session.Controller {
	if s, ok := d.sessions[pairCode]; ok {
		return s
	}
	env := session.Env{
		Emit: func(category signal.Category, action signal.Action, payload signal.Payload) {
			if err := d.sendSignal(pairCode, category, action, payload); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "sessionFor",
					"peer":     pairCode,
					"category": category,
					"error":    err,
				}).Warn("Session signal publish failed")
			}
		},
		Feedback: haptic.SinkFunc(d.playFeedback),
		Post:     d.post,
	}
	s := session.NewController(env, d.identity.PairCode, pairCode)
	d.sessions[pairCode] = s
	return s
}

// sendSignal encodes one signal and publishes it to the peer's derived
// channel. Chat signals are sealed with the pair key, everything else
// travels in the clear.
func (d *Device) sendSignal(peerCode string, category signal.Category, action signal.Action, payload signal.Payload) error {
	var key []byte
	if category == signal.CategoryChat {
		var err error
		if key, err = d.keyFor(peerCode); err != nil {
			return err
		}
	}

	sig := signal.New(d.identity.PairCode, d.identity.ID, d.identity.DisplayName, category, action, payload)
	data, err := signal.Encode(sig, key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(d.ctx, publishTimeout)
	defer cancel()
	return d.trans.Publish(ctx, crypto.DeriveChannelName(peerCode), data)
}

// applyPresence is the tracker's sink. It runs on poll goroutines, so it
// only touches thread-safe contact state and posts the callback.
func (d *Device) applyPresence(pairCode string, online bool, pushToken string) {
	changed := d.contacts.SetOnline(pairCode, online)
	if pushToken != "" && d.contacts.SetPushToken(pairCode, pushToken) {
		if err := d.persistContacts(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "applyPresence",
				"contact":  pairCode,
				"error":    err,
			}).Warn("Contact persist failed")
		}
	}
	if !changed {
		return
	}
	c, err := d.contacts.Get(pairCode)
	if err != nil {
		return
	}
	d.post(func() {
		if d.presenceCallback != nil {
			d.presenceCallback(c)
		}
	})
}
