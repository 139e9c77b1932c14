package cli

import (
	"context"
	"log"
	"os"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/config"
	"dutch-verb-trainer/internal/infra/sqlite"
	"dutch-verb-trainer/internal/transport/terminal"
	"github.com/spf13/cobra"
)

// NewDrillCmd runs an interactive drill in the terminal.
func NewDrillCmd(configPath *string) *cobra.Command {
	var (
		questions int
		fresh     bool
		reset     bool
	)
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Practice conjugations in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrill(cmd.Context(), *configPath, questions, !fresh, reset)
		},
	}
	cmd.Flags().IntVarP(&questions, "questions", "n", 0, "number of verbs (1-50); defaults to config")
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new session instead of continuing")
	cmd.Flags().BoolVar(&reset, "reset", false, "erase the stored session and exit")
	return cmd
}

func runDrill(ctx context.Context, configPath string, questions int, resume, reset bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sel, err := cfg.Selection()
	if err != nil {
		return err
	}
	if questions == 0 {
		questions = cfg.Quiz.Questions
	}

	res, err := openResources(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	catalogue, err := res.newCatalogue(cfg)
	if err != nil {
		return err
	}

	kv := res.newKVStore(cfg)
	if cfg.SQLite.Path != "" {
		local, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer local.Close()
		kv = local
	}

	store := app.NewSessionStore(kv, cfg.Session.Key)
	service := app.NewQuizService(store, catalogue, app.NewRandomPicker()).WithMaxQuestions(cfg.Quiz.MaxQuestions)
	if reset {
		if err := service.Reset(ctx); err != nil {
			return err
		}
		log.Printf("session %q erased", store.Key())
		return nil
	}

	return terminal.Run(ctx, service, os.Stdin, os.Stdout, terminal.Options{
		Questions: questions,
		Selection: sel,
		Resume:    resume,
	})
}
