package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/config"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// batchCmd tags a folder of images or a mixed list of paths and URLs.
var batchCmd = &cobra.Command{
	Use:   "batch <folder | inputs...>",
	Short: "Tag a folder of images or a mixed list of files and URLs",
	Long: `Process many images in one run. A single directory argument scans the
folder for supported images; multiple arguments are treated as a mixed list
of file paths and URLs.

Per-item failures are recorded in the output and never abort the run.

Examples:
  taggo batch ./images
  taggo batch ./images --format csv --output tags.csv
  taggo batch a.jpg b.png https://example.com/c.webp --format json
  taggo batch ./images --format full-zip --output bundle.zip --progress`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func init() {
	batchCmd.Flags().String("format", "", "output format (csv, json, txt-zip, full-zip)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default stdout for csv/json)")
	batchCmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	batchCmd.Flags().Int("batch-size", 0, "images per classifier call for local files")
	batchCmd.Flags().Int("fetch-workers", 0, "parallel workers for URL fetches")
	rootCmd.AddCommand(batchCmd)
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyBatchFlags(cmd, cfg)
	if err := checkModels(cfg); err != nil {
		return err
	}

	classifier, err := tagger.New(cfg.ToTaggerConfig())
	if err != nil {
		return fmt.Errorf("loading classifier: %w", err)
	}
	defer func() { _ = classifier.Close() }()

	runner := batch.NewRunner(classifier, cfg.ToBatchConfig())

	var progress batch.ProgressFunc
	var bar *batch.ConsoleProgress
	if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
		bar = batch.NewConsoleProgress(os.Stderr, "tagging ")
		progress = bar.Func()
	}

	var results batch.ResultSet
	if len(args) == 1 && isDirectory(args[0]) {
		results = runner.ProcessFolder(cmd.Context(), args[0], cfg.Tagger.Threshold, progress)
	} else {
		results = runner.ProcessInputs(cmd.Context(), args, cfg.Tagger.Threshold, progress)
	}
	if bar != nil {
		bar.Finish()
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile == "" {
		outputFile = cfg.Output.File
	}

	return writeResults(cmd, results, format, outputFile)
}

func applyBatchFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("batch-size") {
		cfg.Batch.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
	if cmd.Flags().Changed("fetch-workers") {
		cfg.Batch.FetchWorkers, _ = cmd.Flags().GetInt("fetch-workers")
	}
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
