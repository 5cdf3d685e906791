package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibelink/vibelink"
	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
	"github.com/vibelink/vibelink/transport"
)

// demoCmd runs two in-process devices against an in-memory hub and
// narrates the exchange, as a smoke test of the whole stack without any
// external transport.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run two in-memory devices through a signal exchange",
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := transport.NewMemoryHub()

			ada, err := demoDevice(hub, "Ada", "ABCD12")
			if err != nil {
				return err
			}
			defer ada.Kill()

			bea, err := demoDevice(hub, "Bea", "ZZTOP9")
			if err != nil {
				return err
			}
			defer bea.Kill()

			if err := ada.AddContact(contact.Contact{PairCode: "ZZTOP9", DisplayName: "Bea"}); err != nil {
				return err
			}
			if err := bea.AddContact(contact.Contact{PairCode: "ABCD12", DisplayName: "Ada"}); err != nil {
				return err
			}

			bea.OnTouch(func(from contact.Contact, touch signal.TouchPayload) {
				fmt.Printf("[Bea] %s sent a %s", from.DisplayName, touch.Type)
				if touch.Whisper != "" {
					fmt.Printf(" whispering %q", touch.Whisper)
				}
				fmt.Println()
			})
			bea.OnFeedback(func(p haptic.Pattern) {
				fmt.Printf("[Bea] bzzt %v\n", p)
			})
			bea.OnChatMessage(func(msg vibelink.ChatMessage) {
				fmt.Printf("[Bea] %s says: %s\n", msg.FromName, msg.Text)
			})
			ada.OnChatMessage(func(msg vibelink.ChatMessage) {
				if !msg.FromSelf {
					fmt.Printf("[Ada] %s says: %s\n", msg.FromName, msg.Text)
				}
			})

			fmt.Println("Ada taps twice...")
			if err := ada.SendTap("ZZTOP9", 2); err != nil {
				return err
			}

			fmt.Println("Ada whispers...")
			if err := ada.SendWhisper("ZZTOP9", "good morning"); err != nil {
				return err
			}

			fmt.Println("Ada sends an encrypted message...")
			if err := ada.SendChatMessage("ZZTOP9", "channel "+crypto.DeriveChannelName("ZZTOP9")+" works"); err != nil {
				return err
			}
			if err := bea.SendChatMessage("ABCD12", "loud and clear"); err != nil {
				return err
			}

			// Give the event queues a moment to drain before teardown.
			time.Sleep(200 * time.Millisecond)
			return nil
		},
	}
}

func demoDevice(hub *transport.MemoryHub, name, code string) (*vibelink.Device, error) {
	opts := vibelink.NewOptions()
	opts.Identity = contact.Identity{
		ID:          crypto.GenerateID(),
		DisplayName: name,
		PairCode:    code,
	}
	opts.Transport = hub.Client(name)
	opts.PresenceInterval = 100 * time.Millisecond
	return vibelink.New(opts)
}
