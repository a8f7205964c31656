// cmd/markers/generate.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/Corphon/LessonPlanner/internal/app"
	"github.com/Corphon/LessonPlanner/internal/config"
	"github.com/Corphon/LessonPlanner/internal/di"
	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var requestFile, out, provider string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline for a request file against the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(requestFile)
			if err != nil {
				return err
			}
			if provider != "" {
				payload[services.ProviderField] = provider
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := utils.GetLogger()
			for _, w := range cfg.Warnings {
				logger.Warn("config value replaced by default", "detail", w)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			lesson, err := di.Resolve[*services.LessonService](a.Container, di.ServiceLesson)
			if err != nil {
				return err
			}
			res, err := lesson.Generate(ctx, payload, services.GenerateOptions{})
			if err != nil {
				return fmt.Errorf("%s: %w", apperrors.TypeOf(err), err)
			}
			return writeJSON(cmd.OutOrStdout(), out, res)
		},
	}
	cmd.Flags().StringVarP(&requestFile, "request", "r", "", "JSON request file")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file")
	cmd.Flags().StringVar(&provider, "provider", "", "model provider for this run")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func readPayload(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return nil, fmt.Errorf("%s: request must be a JSON object", path)
	}
	return payload, nil
}
