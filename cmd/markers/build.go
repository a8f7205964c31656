// cmd/markers/build.go
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/storage"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild markers.json from a diagnostics session file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			doc, req, err := loadSession(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			markers := services.NewMarkersBuilder(nil, nil).Build(doc, req)
			if err := writeJSON(cmd.OutOrStdout(), out, markers); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "%d markers written to %s\n", len(markers), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", filepath.Join("data", storage.SessionFile), "diagnostics session file")
	cmd.Flags().StringVar(&out, "out", "markers.json", "output file")
	return cmd
}

// loadSession reads the text between the first '{' and the last '}' so that
// stray log lines around the record are tolerated.
func loadSession(raw []byte) (*models.LessonDocument, *models.LessonRequest, error) {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, nil, errors.New("no JSON object found")
	}

	var session struct {
		Success bool                   `json:"success"`
		Request *models.LessonRequest  `json:"request"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw[start:end+1], &session); err != nil {
		return nil, nil, fmt.Errorf("parse session: %w", err)
	}
	if !session.Success {
		return nil, nil, errors.New("session was not successful")
	}
	if session.Data == nil {
		return nil, nil, errors.New("session has no data")
	}
	return models.DecodeLesson(session.Data), session.Request, nil
}

// writeJSON writes v indented to path; "-" means stdout.
func writeJSON(stdout io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
