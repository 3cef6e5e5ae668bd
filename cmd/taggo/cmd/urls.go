package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/source"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// urlsCmd tags images fetched from a list of URLs.
var urlsCmd = &cobra.Command{
	Use:   "urls <url... | list-file>",
	Short: "Tag images fetched from a list of URLs",
	Long: `Fetch and tag remote images. URLs are given as arguments, or a single
argument naming a text file with one URL per line (blank lines and lines
that are not http(s) URLs are skipped).

Examples:
  taggo urls https://example.com/a.jpg https://example.com/b.png
  taggo urls urls.txt --format csv --output tags.csv
  taggo urls urls.txt --format txt-zip --output tags.zip --progress`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runURLsCommand,
}

func init() {
	urlsCmd.Flags().String("format", "", "output format (csv, json, txt-zip, full-zip)")
	urlsCmd.Flags().StringP("output", "o", "", "output file (default stdout for csv/json)")
	urlsCmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	urlsCmd.Flags().Int("fetch-workers", 0, "parallel workers for URL fetches")
	rootCmd.AddCommand(urlsCmd)
}

func runURLsCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cmd.Flags().Changed("fetch-workers") {
		cfg.Batch.FetchWorkers, _ = cmd.Flags().GetInt("fetch-workers")
	}

	urls, err := collectURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to process")
	}
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
		bar = batch.NewConsoleProgress(os.Stderr, "fetching ")
		progress = bar.Func()
	}

	results := runner.ProcessURLs(cmd.Context(), urls, cfg.Tagger.Threshold, progress)
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

// collectURLs expands the arguments: a single non-URL argument is read as a
// list file, anything else is taken as URLs directly.
func collectURLs(args []string) ([]string, error) {
	if len(args) == 1 && !source.IsURL(args[0]) {
		return readURLFile(args[0])
	}
	return args, nil
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-provided list file
	if err != nil {
		return nil, fmt.Errorf("opening URL list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}
