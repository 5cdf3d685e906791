package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibelink/vibelink/store"
)

func patternCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Manage saved vibration patterns",
	}
	cmd.AddCommand(patternSaveCmd(), patternListCmd(), patternDeleteCmd())
	return cmd
}

func patternSaveCmd() *cobra.Command {
	var emoji string

	cmd := &cobra.Command{
		Use:   "save NAME MS[,MS...]",
		Short: "Save a vibration pattern as alternating on/off milliseconds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []int
			for _, part := range strings.Split(args[1], ",") {
				ms, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil || ms < 0 {
					return fmt.Errorf("bad duration %q", part)
				}
				data = append(data, ms)
			}

			p := store.Pattern{Name: args[0], Emoji: emoji, Data: data}
			if err := st.SavePattern(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Printf("Saved %s.\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&emoji, "emoji", "", "emoji shown with this pattern")
	return cmd
}

func patternListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := st.Patterns(cmd.Context())
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Println("No patterns saved.")
				return nil
			}
			for _, p := range patterns {
				fmt.Printf("%s %s  %v\n", p.Name, p.Emoji, p.Data)
			}
			return nil
		},
	}
}

func patternDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.DeletePattern(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s.\n", args[0])
			return nil
		},
	}
}
