package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/strataframe/strata"
	"github.com/strataframe/strata/internal/build"
	"github.com/strataframe/strata/internal/config"
	"github.com/strataframe/strata/pkg/manifest"
)

func buildCmd() *cobra.Command {
	var (
		dir    string
		output string
		deploy string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Statically generate prerendered routes",
		Long: `Statically generate every prerenderable route in the manifest.

Pages render through the same pipeline the live server uses; redirect
routes become meta-refresh HTML documents. Output goes to the configured
build directory, or directly to S3 with --deploy.

Examples:
  strata build
  strata build --output=dist
  strata build --deploy=s3://my-site/preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), dir, output, deploy)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Site directory containing strata.json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from strata.json)")
	cmd.Flags().StringVar(&deploy, "deploy", "", "Deploy target, e.g. s3://bucket/prefix")

	return cmd
}

func runBuild(ctx context.Context, dir, output, deploy string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Build.Output = output
	}

	app := newApp(cfg, m, false)

	opts := strata.DefaultBuildOptions()
	opts.OutDir = cfg.OutputPath()
	opts.Format = cfg.Build.Format
	opts.Concurrency = cfg.Build.Concurrency
	opts.EmitRedirects = cfg.Build.Redirects
	opts.OnProgress = func(step string) {
		fmt.Printf("  %s\n", step)
	}

	if deploy != "" {
		store, err := deployStore(ctx, deploy)
		if err != nil {
			return err
		}
		opts.Store = store
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := app.Build(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Built %d pages, %d redirects in %s", result.Pages, result.Redirects, result.Duration.Round(1e6))
	if result.Skipped > 0 {
		fmt.Printf(" (%d collisions skipped)", result.Skipped)
	}
	fmt.Println()
	return nil
}

// deployStore parses an s3://bucket/prefix target into an output store.
func deployStore(ctx context.Context, target string) (strata.OutputStore, error) {
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		return nil, fmt.Errorf("unsupported deploy target %q, expected s3://bucket/prefix", target)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("deploy target %q has no bucket", target)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return build.NewS3Store(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}
