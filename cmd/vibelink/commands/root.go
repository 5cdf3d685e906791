// Package commands implements the vibelink CLI.
package commands

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibelink/vibelink/config"
	"github.com/vibelink/vibelink/store"
	boltstore "github.com/vibelink/vibelink/store/bolt"
)

var (
	configPath string
	cfg        *config.Config
	st         store.Store
)

func Execute() error {
	root := &cobra.Command{
		Use:   "vibelink",
		Short: "Paired-device touch signals over a private channel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				configPath = filepath.Join(dir, ".vibelink", "config.yaml")
			}

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}

			level, err := logrus.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)

			st, err = boltstore.New(cfg.Storage.Path)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if st == nil {
				return nil
			}
			return st.Close()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.vibelink/config.yaml)")

	root.AddCommand(initCmd(), showCmd(), contactCmd(), patternCmd(), demoCmd())
	return root.Execute()
}
