package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit, build time and platform of this binary.

Examples:
  ope version
  ope version --short
  ope version --format json`,
	// Version output never needs the config file.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringP("format", "f", "text", "output format: text or json")
	versionCmd.Flags().BoolP("short", "s", false, "print only the version")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if short, _ := cmd.Flags().GetBool("short"); short {
		_, err := fmt.Fprintln(out, version.GetVersion())
		return err
	}

	info := version.Get()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text":
		_, err := fmt.Fprintln(out, info.String())
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		return errors.NewValidationError("VERSION_FORMAT", fmt.Sprintf("unknown format %q, expected text or json", format))
	}
}
