package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// tagCmd tags a single image from a file path or URL.
var tagCmd = &cobra.Command{
	Use:   "tag <image|url>",
	Short: "Tag a single image from a file or URL",
	Long: `Run one image through the classifier and print its tags.

The input may be a local image file (.jpg, .jpeg, .png, .bmp, .webp) or an
http(s) URL.

Examples:
  taggo tag photo.jpg
  taggo tag https://example.com/photo.jpg --threshold 0.35
  taggo tag photo.jpg --format json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTagCommand,
}

func init() {
	tagCmd.Flags().String("format", "text", "output format (text, json)")
	rootCmd.AddCommand(tagCmd)
}

func runTagCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := checkModels(cfg); err != nil {
		return err
	}

	classifier, err := tagger.New(cfg.ToTaggerConfig())
	if err != nil {
		return fmt.Errorf("loading classifier: %w", err)
	}
	defer func() { _ = classifier.Close() }()

	runner := batch.NewRunner(classifier, cfg.ToBatchConfig())
	results := runner.ProcessInputs(cmd.Context(), args, cfg.Tagger.Threshold, nil)
	if len(results) == 0 {
		return fmt.Errorf("no result for input %q", args[0])
	}

	rec := results[0]
	if rec.Failed() {
		return fmt.Errorf("tagging %s: %s", rec.Source, rec.Err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rec.TagString())
	return err
}
