package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/config"
	"github.com/sells-group/review-cli/internal/identity"
	"github.com/sells-group/review-cli/internal/model"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "review-cli",
	Short: "Human review of machine-extracted document data",
	Long:  "Loads extraction JSON alongside the source document, accepts field-level corrections, and records every change in an append-only provenance log.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// currentUser resolves the reviewer identity from config, falling back
// to the development stub when nothing is configured.
func currentUser() (model.User, error) {
	p := identity.Static{User: model.User{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		Role:  cfg.User.Role,
	}}
	if u, err := p.Current(); err == nil {
		return u, nil
	}
	return identity.Default().Current()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
