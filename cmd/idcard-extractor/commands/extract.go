package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spherical/idcard-extractor/cmd/idcard-extractor/ui"
	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/extract"
	"github.com/spherical/idcard-extractor/internal/observability"
	"github.com/spherical/idcard-extractor/pkg/extractor"
)

var extractOutputPath string

// newClient builds the extractor; tests replace it to stub the model.
var newClient = func(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*extractor.Client, error) {
	return extractor.NewClientWithConfig(ctx, cfg, logger)
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract ID card fields from a PDF",
	Long:  "Render the first page of a PDF, send it to the configured model and print the extracted record as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutputPath, "output", "o", "", "write the record JSON to this file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

var stateMessages = map[extract.State]string{
	extract.StateReceived:   "Validating document...",
	extract.StateValidated:  "Rendering first page...",
	extract.StateRasterized: "Waiting for the model...",
	extract.StateExtracted:  "Parsing response...",
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if ui.Verbose() {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      cmd.ErrOrStderr(),
		ServiceName: cfg.Observability.ServiceName,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ui.Info("Document: %s", path)
	ui.Info("Model: %s (%s)", cfg.LLM.Model, cfg.LLM.Provider)

	spinner := ui.NewSpinner("Reading document...")
	if !ui.Verbose() {
		spinner.Start()
	}

	events := make(chan extractor.Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range events {
			if msg, ok := stateMessages[evt.State]; ok {
				spinner.UpdateMessage(msg)
			}
		}
	}()

	start := time.Now()
	record, err := client.ProcessFile(ctx, path, events)
	close(events)
	<-done
	spinner.Stop()

	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			ui.Error("%s", de.PublicMessage())
		}
		return err
	}

	if record.Confidence == nil || *record.Confidence < lowConfidence {
		ui.Warning("Model confidence is %s, check the fields before relying on them", confidenceText(record.Confidence))
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if extractOutputPath != "" {
		if err := os.WriteFile(extractOutputPath, append(body, '\n'), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		ui.Success("Record written to %s in %s", extractOutputPath, ui.FormatDuration(time.Since(start)))
		return nil
	}

	ui.Data(body)
	if ui.Verbose() {
		printSummary(record)
		ui.Success("Extracted in %s", ui.FormatDuration(time.Since(start)))
	}
	return nil
}

// lowConfidence is the score below which the CLI warns about the record.
const lowConfidence = 60

func confidenceText(c *int) string {
	if c == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", *c)
}

func printSummary(rec *extractor.Record) {
	ui.Section("Extracted fields")
	fields := []struct {
		label string
		value *string
	}{
		{"Name", rec.Name},
		{"Date of birth", rec.DateOfBirth},
		{"Year of birth", rec.DateOfBirthYear},
		{"Gender", rec.Gender},
		{"ID number", rec.IDNumber},
		{"Address", rec.Address},
		{"Parent", rec.ParentName},
	}
	for _, f := range fields {
		v := "-"
		if f.value != nil {
			v = *f.value
		}
		ui.KeyValue(f.label, v)
	}
	ui.KeyValue("Confidence", confidenceText(rec.Confidence))
}
