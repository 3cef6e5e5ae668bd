package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/config"
	"github.com/MeKo-Tech/taggo/internal/export"
	"github.com/MeKo-Tech/taggo/internal/models"
)

// checkModels verifies the models directory up front when no explicit model
// paths are configured, so a missing setup fails with a clear message before
// any fetching starts.
func checkModels(cfg *config.Config) error {
	if cfg.Tagger.ModelPath != "" && cfg.Tagger.TagsPath != "" {
		return nil
	}
	return models.ValidateModelsDir(cfg.ModelsDir)
}

// writeResults renders a result set in the requested format. Zip formats
// require an output file; csv and json fall back to stdout when none is set.
func writeResults(cmd *cobra.Command, results batch.ResultSet, format, outputFile string) error {
	switch format {
	case "csv":
		if outputFile == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), export.CSV(results))
			return err
		}
		return export.SaveCSV(outputFile, results)

	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		if outputFile == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		return os.WriteFile(outputFile, data, 0o600)

	case "txt-zip":
		if outputFile == "" {
			return fmt.Errorf("--output is required for format %q", format)
		}
		data, err := export.TextBundle(results)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o600)

	case "full-zip":
		if outputFile == "" {
			return fmt.Errorf("--output is required for format %q", format)
		}
		data, err := export.TextAndImageBundle(results)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o600)

	default:
		return fmt.Errorf("unsupported format %q (expected csv, json, txt-zip, full-zip)", format)
	}
}
