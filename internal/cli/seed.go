package cli

import (
	"context"
	"log"

	"dutch-verb-trainer/internal/catalogue"
	"dutch-verb-trainer/internal/config"
	pgloader "dutch-verb-trainer/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads a catalogue file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a verb catalogue into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalogue file (YAML or JSON); defaults to the built-in list")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Catalogue.Path
	}
	verbs, err := catalogue.Load(file)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgloader.SeedVerbs(ctx, db, verbs); err != nil {
		return err
	}
	log.Printf("seeded %d verbs", len(verbs))
	return nil
}
