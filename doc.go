// Package vibelink implements a paired-device touch signal protocol.
//
// Two devices pair by exchanging short human-memorable codes. From those
// codes alone each side derives the same private channel name and the
// same symmetric encryption key, so no shared secret ever travels over
// the wire. On top of that channel the devices exchange typed signals:
// taps, holds, and recorded vibration patterns, encrypted chat, and the
// loosely synchronized shared modes (heartbeat, breathing, drawing,
// telepathy-match, tic-tac-toe).
//
// The Device type is the main entry point:
//
//	hub := transport.NewMemoryHub()
//
//	opts := vibelink.NewOptions()
//	opts.Identity = contact.Identity{
//		ID:          crypto.GenerateID(),
//		DisplayName: "Ada",
//		PairCode:    "ABCD12",
//	}
//	opts.Transport = hub.Client("ada")
//
//	dev, err := vibelink.New(opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Kill()
//
//	dev.OnTouch(func(from contact.Contact, touch signal.TouchPayload) {
//		fmt.Printf("%s sent a %s\n", from.DisplayName, touch.Type)
//	})
//
//	if err := dev.AddContact(contact.Contact{PairCode: "ZZTOP9", DisplayName: "Bea"}); err != nil {
//		log.Fatal(err)
//	}
//	if err := dev.SendTap("ZZTOP9", 2); err != nil {
//		log.Fatal(err)
//	}
//
// Everything inbound is serialized onto a single event queue per device,
// so callbacks and session machines never race each other. Session
// machines are reached through WithSession, which runs the given
// function on that queue.
package vibelink
