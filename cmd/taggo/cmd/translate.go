package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/taggo/internal/translate"
)

// translateCmd remaps tags using a translation dictionary.
var translateCmd = &cobra.Command{
	Use:   "translate --dict <rules> [tags | --file f | --csv f | --folder d]",
	Short: "Remap tags using a translation dictionary",
	Long: `Apply a tag-translation dictionary to a tag string, a text file, a CSV
export, or a folder of tag files.

The dictionary is a line-oriented rule file: "original: translation" replaces
a tag (translations may expand to several comma-separated tags), a translation
of "." deletes the tag, and lines starting with "#" are comments. With
--dict-csv the rules are read from a two-column CSV instead.

Examples:
  taggo translate --dict rules.txt "anthro, unwanted, female"
  taggo translate --dict rules.txt --file tags.txt --output translated.txt
  taggo translate --dict rules.txt --csv tags.csv --output translated.csv
  taggo translate --dict rules.txt --folder ./tags --output translated.zip`,
	SilenceUsage: true,
	RunE:         runTranslateCommand,
}

func init() {
	translateCmd.Flags().String("dict", "", "translation rule file (required)")
	translateCmd.Flags().Bool("dict-csv", false, "read the dictionary as a two-column CSV")
	translateCmd.Flags().String("file", "", "translate a text file of comma-joined tags")
	translateCmd.Flags().String("csv", "", "translate the tags column of a CSV export")
	translateCmd.Flags().String("folder", "", "translate every .txt file in a folder into a zip")
	translateCmd.Flags().StringP("output", "o", "", "output file (default stdout, or in-place for --file)")
	_ = translateCmd.MarkFlagRequired("dict")
	rootCmd.AddCommand(translateCmd)
}

func runTranslateCommand(cmd *cobra.Command, args []string) error {
	dict, err := loadDictionary(cmd)
	if err != nil {
		return err
	}

	filePath, _ := cmd.Flags().GetString("file")
	csvPath, _ := cmd.Flags().GetString("csv")
	folderPath, _ := cmd.Flags().GetString("folder")
	outputFile, _ := cmd.Flags().GetString("output")

	switch {
	case folderPath != "":
		if outputFile == "" {
			return fmt.Errorf("--output is required with --folder")
		}
		data, err := translate.TranslateFolder(folderPath, dict)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o600)

	case csvPath != "":
		translated, err := translate.TranslateCSVFile(csvPath, dict)
		if err != nil {
			return err
		}
		return writeText(cmd, translated, outputFile)

	case filePath != "":
		translated, err := translate.TranslateTextFile(filePath, dict)
		if err != nil {
			return err
		}
		if outputFile == "" {
			outputFile = filePath
		}
		return os.WriteFile(outputFile, []byte(translated), 0o600)

	case len(args) > 0:
		return writeText(cmd, dict.ApplyString(strings.Join(args, ", ")), outputFile)

	default:
		return fmt.Errorf("nothing to translate: pass a tag string or one of --file, --csv, --folder")
	}
}

func loadDictionary(cmd *cobra.Command) (*translate.Dictionary, error) {
	dictPath, _ := cmd.Flags().GetString("dict")
	asCSV, _ := cmd.Flags().GetBool("dict-csv")
	if !asCSV {
		asCSV = strings.EqualFold(filepath.Ext(dictPath), ".csv")
	}

	if asCSV {
		return translate.LoadCSV(dictPath)
	}
	return translate.LoadFile(dictPath)
}

func writeText(cmd *cobra.Command, text, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	return os.WriteFile(outputFile, []byte(text), 0o600)
}
