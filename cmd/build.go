package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ope/internal/build"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the page from the content directory",
	Long: `Render songs.md, albums.md, links.md and about.md into a single static page.

With --production, HTML comments are stripped from the output.

Examples:
  ope build
  ope build --production
  ope build --output dist/index.html`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("production", false, "strip HTML comments from the output")
	buildCmd.Flags().StringP("output", "o", "", "output file (default build.output)")
	buildCmd.Flags().String("content", "", "content directory (default content.dir)")
}

var buildFlagKeys = map[string]string{
	"production": "build.production",
	"output":     "build.output",
	"content":    "content.dir",
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, buildFlagKeys)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	b := build.NewBuilder(cfg, logger, build.Options{})
	result, err := b.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %s in %s\n", result.Output, result.Duration.Round(1e6))
	fmt.Fprintf(out, "  songs: %d  albums: %d  links: %d  featured: %d\n",
		result.Songs, result.Albums, result.Links, result.Featured)
	fmt.Fprintf(out, "  last updated: %s\n", result.LastUpdated)
	return nil
}
