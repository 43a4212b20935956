package cmd

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/config"
	"github.com/conneroisu/ope/internal/content"
	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/reviews"
	"github.com/conneroisu/ope/internal/store"
)

// defaultSQLiteOut is used for --format sqlite when --out is not given.
var defaultSQLiteOut = filepath.Join("data", "reviews.db")

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert songs.md into a review snapshot",
	Long: `Parse the songs file and write the reviews as a JSON snapshot or into a
SQLite database, ready to be served by 'ope serve'.

Examples:
  ope convert
  ope convert --input content/songs.md --out data/reviews.json
  ope convert --format sqlite --out data/reviews.db`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("input", "i", "", "songs file (default content.dir/content.songs)")
	convertCmd.Flags().String("out", "", "output path (default data.source, or data/reviews.db for sqlite)")
	convertCmd.Flags().StringP("format", "f", config.FormatJSON, "output format: json or sqlite")
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	if input == "" {
		input = cfg.Content.Path(cfg.Content.Songs)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewIOError("CONVERT_INPUT", "songs file not found", err).WithContext("path", input)
		}
		return errors.NewIOError("CONVERT_INPUT", "read songs file", err).WithContext("path", input)
	}
	all := reviews.FromEntries(content.ParseSections(string(data)))

	switch format {
	case config.FormatJSON:
		if out == "" {
			out = cfg.Data.Source
		}
		snap := reviews.NewSnapshot(all, filepath.Base(input), time.Now())
		if err := reviews.WriteSnapshot(out, snap); err != nil {
			return err
		}
	case config.FormatSQLite:
		if out == "" {
			out = defaultSQLiteOut
		}
		if err := (store.SQLite{Path: out}).Save(cmd.Context(), all); err != nil {
			return err
		}
	default:
		return errors.NewValidationError("CONVERT_FORMAT",
			fmt.Sprintf("unknown format %q, expected %s or %s", format, config.FormatJSON, config.FormatSQLite))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d reviews from %s to %s\n", len(all), input, out)
	return nil
}
