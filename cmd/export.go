package cmd

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/query"
	"github.com/conneroisu/ope/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the reviews as CSV",
	Long: `Write every review as CSV, in the same shape as the API's /export/csv.
The reviews are read from the configured data source.

Examples:
  ope export > reviews.csv
  ope export --out ope_reviews.csv --data-format markdown`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "", "write to this file instead of stdout")
	exportCmd.Flags().String("data", "", "review data source (default data.source)")
	exportCmd.Flags().String("data-format", "", "review data format: json, markdown or sqlite")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"data":        "data.source",
		"data-format": "data.format",
	})
	if err != nil {
		return err
	}

	all, err := store.SourceFor(cfg).Load(cmd.Context())
	if err != nil {
		return err
	}
	body, err := query.ExportCSV(all)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), body)
		return err
	}
	if err := renameio.WriteFile(out, []byte(body), 0o644); err != nil {
		return errors.NewIOError("EXPORT_WRITE", "write csv", err).WithContext("path", out)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d reviews to %s\n", len(all), out)
	return nil
}
