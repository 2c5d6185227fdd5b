package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/content"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/site"
	"github.com/Fatimaq07/Humans-WInning-AI/web"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site into the output directory",
	Long: `The build command renders every page, the 404 page and the effect
posters, and copies static assets into the configured output directory
(default './public/'). Content, layouts and static trees are read from
contentDir when it has them and from the embedded defaults otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context(), appConfig, logger)
	},
}

func runBuild(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	s, err := newSite(cfg, log)
	if err != nil {
		return err
	}
	return s.Build(ctx, cfg.OutputDir)
}

func newSite(cfg config.Config, log *zap.Logger) (*site.Site, error) {
	src, err := content.Resolve(web.FS, cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	return site.New(cfg, src, log)
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output directory (overrides outputDir)")
	buildCmd.Flags().String("content", "", "directory holding content, layouts and static trees")
	rootCmd.AddCommand(buildCmd)
}
