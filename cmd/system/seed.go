package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/pkg/database"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the assessment catalog reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.New(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close(db)

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			fmt.Println("Seeding assessment catalog.")
			if err := catalog.Seed(ctx, db); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}

			fmt.Println("Catalog seeded successfully.")
			return nil
		},
	}

	return cmd
}
