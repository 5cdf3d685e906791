package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
	"github.com/vibelink/vibelink/store"
)

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a pairing code and device identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("a display name is required (--name)")
			}

			if _, err := st.Identity(cmd.Context()); err == nil {
				return fmt.Errorf("identity already exists, use 'vibelink show'")
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			code, err := crypto.GeneratePairCode()
			if err != nil {
				return err
			}
			id := &contact.Identity{
				ID:          crypto.GenerateID(),
				DisplayName: name,
				PairCode:    code,
			}
			if err := st.SaveIdentity(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Printf("Identity created.\nPairing code: %s\nChannel: %s\n",
				code, crypto.DeriveChannelName(code))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name shown to contacts")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the local identity and pairing code",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := st.Identity(cmd.Context())
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no identity yet, run 'vibelink init'")
				}
				return err
			}
			fmt.Printf("Name: %s\nPairing code: %s\nChannel: %s\n",
				id.DisplayName, id.PairCode, crypto.DeriveChannelName(id.PairCode))
			return nil
		},
	}
}
