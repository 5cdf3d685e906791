package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
)

func contactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage paired contacts",
	}
	cmd.AddCommand(contactAddCmd(), contactRemoveCmd(), contactListCmd())
	return cmd
}

func contactAddCmd() *cobra.Command {
	var name, tag string

	cmd := &cobra.Command{
		Use:   "add CODE",
		Short: "Pair with another device by its pairing code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			if err := crypto.ValidatePairCode(code); err != nil {
				return err
			}

			id, err := st.Identity(cmd.Context())
			if err != nil {
				return fmt.Errorf("no identity yet, run 'vibelink init'")
			}
			if code == id.PairCode {
				return fmt.Errorf("cannot pair with your own code")
			}

			contacts, err := st.Contacts(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range contacts {
				if c.PairCode == code {
					return contact.ErrDuplicateContact
				}
			}

			contacts = append(contacts, contact.Contact{
				PairCode:    code,
				DisplayName: name,
				VisualTag:   tag,
			})
			if err := st.SaveContacts(cmd.Context(), contacts); err != nil {
				return err
			}

			fmt.Printf("Paired with %s.\n", code)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for this contact")
	cmd.Flags().StringVar(&tag, "tag", "", "visual tag (emoji) for this contact")
	return cmd
}

func contactRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove CODE",
		Short: "Unpair a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])

			contacts, err := st.Contacts(cmd.Context())
			if err != nil {
				return err
			}
			kept := contacts[:0]
			for _, c := range contacts {
				if c.PairCode != code {
					kept = append(kept, c)
				}
			}
			if len(kept) == len(contacts) {
				return contact.ErrUnknownContact
			}
			if err := st.SaveContacts(cmd.Context(), kept); err != nil {
				return err
			}

			fmt.Printf("Unpaired %s.\n", code)
			return nil
		},
	}
}

func contactListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List paired contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := st.Contacts(cmd.Context())
			if err != nil {
				return err
			}
			if len(contacts) == 0 {
				fmt.Println("No contacts paired.")
				return nil
			}
			for _, c := range contacts {
				name := c.DisplayName
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Printf("%s  %s %s\n", c.PairCode, name, c.VisualTag)
			}
			return nil
		},
	}
}
