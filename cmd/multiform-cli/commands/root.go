package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	multiform "github.com/goliatone/go-multiform"
	"github.com/goliatone/go-multiform/pkg/model"
)

var (
	verbose     bool
	dir         string
	openapiPath string
	operations  []string

	logger *zap.Logger
)

// Execute builds the root command and runs it until completion or interrupt.
func Execute() error {
	root := &cobra.Command{
		Use:          "multiform",
		Short:        "Fill several forms interactively and submit them together",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lggr, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = lggr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&dir, "dir", "", "directory of YAML/JSON form definitions")
	root.PersistentFlags().StringVar(&openapiPath, "openapi", "", "OpenAPI document whose request bodies become forms")
	root.PersistentFlags().StringSliceVar(&operations, "operation", nil, "operation ids to use from --openapi (default: all with a request body)")

	root.AddCommand(fillCmd(), listCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

func loadDefinitions(ctx context.Context) ([]model.FormDefinition, error) {
	switch {
	case dir != "" && openapiPath != "":
		return nil, fmt.Errorf("--dir and --openapi are mutually exclusive")
	case openapiPath != "":
		raw, err := os.ReadFile(openapiPath)
		if err != nil {
			return nil, err
		}
		return multiform.DefinitionsFromOpenAPI(ctx, raw, operations...)
	case dir != "":
		return multiform.DefinitionsFromFS(os.DirFS(dir))
	default:
		return multiform.DefinitionsFromFS(multiform.SamplesFS())
	}
}
