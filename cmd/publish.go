package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Builds the site and uploads it to an S3-compatible bucket",
	Long: `The publish command runs a fresh build into the output directory and
uploads every file to publish.bucket under publish.prefix. Set
publish.endpoint and publish.pathStyle for MinIO and other S3-compatible
stores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(cmd.Context(), appConfig, logger)
	},
}

func runPublish(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	p, err := publish.New(ctx, cfg.Publish, log)
	if err != nil {
		return err
	}
	if err := runBuild(ctx, cfg, log); err != nil {
		return err
	}
	_, err = p.Publish(ctx, cfg.OutputDir)
	return err
}

func init() {
	publishCmd.Flags().StringP("output", "o", "", "output directory (overrides outputDir)")
	publishCmd.Flags().String("prefix", "", "object key prefix (overrides publish.prefix)")
	rootCmd.AddCommand(publishCmd)
}
