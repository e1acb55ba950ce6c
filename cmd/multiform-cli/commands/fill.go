package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-multiform/pkg/coordinator"
	"github.com/goliatone/go-multiform/pkg/orchestrator"
	"github.com/goliatone/go-multiform/pkg/prompt"
)

func fillCmd() *cobra.Command {
	var (
		presetPath string
		sanitize   bool
		maxItems   int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Prompt for every form, submit them together and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defs, err := loadDefinitions(ctx)
			if err != nil {
				return err
			}

			options := []orchestrator.Option{
				orchestrator.WithLogger(logger),
				orchestrator.WithFiller(prompt.New(
					prompt.WithPromptDriver(prompt.NewSurveyDriver(os.Stdin, os.Stderr)),
					prompt.WithLogger(logger),
				)),
			}
			if presetPath != "" {
				data, err := os.ReadFile(presetPath)
				if err != nil {
					return err
				}
				preset, err := orchestrator.NewPreset(data)
				if err != nil {
					return err
				}
				options = append(options, orchestrator.WithDecorators(preset))
			}
			if sanitize {
				options = append(options, orchestrator.WithCoordinatorOptions(
					coordinator.WithSanitizer(bluemonday.StrictPolicy()),
				))
			}

			outcome, err := orchestrator.New(options...).Run(ctx, orchestrator.Request{
				Definitions: defs,
				MaxItems:    maxItems,
			})
			if errors.Is(err, prompt.ErrAborted) {
				logger.Info("aborted by user")
				return err
			}
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(outcome.Result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if output != "" {
				if err := os.WriteFile(output, append(payload, '\n'), 0o644); err != nil {
					return err
				}
				logger.Info("result written", zap.String("path", output))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}

			if !outcome.Valid {
				return errors.New("one or more forms are invalid")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&presetPath, "preset", "", "YAML/JSON preset overriding labels, defaults and requirements")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "strip markup from every submitted string")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "maximum items per repeatable form (0 = unlimited)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON result to a file instead of stdout")
	return cmd
}
