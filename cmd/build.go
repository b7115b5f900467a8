package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/catalogsmith/catalogsmith/internal/catalog"
	"github.com/catalogsmith/catalogsmith/internal/config"
	"github.com/catalogsmith/catalogsmith/internal/repo"
)

func newBuildCmd() *cobra.Command {
	var (
		configPath       string
		repoURL          string
		force            bool
		skipPayloadCheck bool
		concurrency      int
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild and republish the repository catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, repoURL)
			if err != nil {
				return err
			}
			// Flags given on the command line win over the config file.
			if cmd.Flags().Changed("force") {
				cfg.Force = force
			}
			if cmd.Flags().Changed("skip-payload-check") {
				cfg.SkipPayloadCheck = skipPayloadCheck
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}

			ctx := cmd.Context()
			accessor, err := repo.Open(ctx, cfg.RepoURL)
			if err != nil {
				return err
			}

			builder := catalog.NewBuilder(accessor, catalog.Options{
				Force:            cfg.Force,
				SkipPayloadCheck: cfg.SkipPayloadCheck,
				Concurrency:      cfg.Concurrency,
				IgnorePatterns:   cfg.IgnorePatterns,
			}, log.Logger)

			result, err := builder.Run(ctx)
			if err != nil {
				return err
			}

			printResult(result)
			if result.Failed() {
				return fmt.Errorf("catalog build finished with %d warnings", len(result.Report.Warnings()))
			}
			return nil
		},
	}

	buildCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	buildCmd.Flags().StringVarP(&repoURL, "repo-url", "r", "", "repository URL (file path or s3://bucket/prefix)")
	buildCmd.Flags().BoolVarP(&force, "force", "f", false, "include records that fail reference validation")
	buildCmd.Flags().BoolVar(&skipPayloadCheck, "skip-payload-check", false, "skip artifact reference validation entirely")
	buildCmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of concurrent repository reads")
	return buildCmd
}

func loadConfig(configPath, repoURL string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if repoURL != "" {
			cfg.RepoURL = repoURL
		}
		return cfg, nil
	}
	if repoURL == "" {
		return nil, fmt.Errorf("either --repo-url or --config is required")
	}
	cfg := config.Default()
	cfg.RepoURL = repoURL
	return cfg, nil
}

// printResult emits the deferred diagnostics in one block, then the
// per-artifact confirmations, then a one-line summary.
func printResult(result *catalog.Result) {
	for _, w := range result.Report.Warnings() {
		pterm.Warning.Println(w)
	}
	for _, path := range result.CatalogsDeleted {
		pterm.Info.Printfln("Deleted %s", path)
	}
	for _, path := range result.CatalogsWritten {
		pterm.Success.Printfln("Wrote %s", path)
	}
	pterm.Info.Printfln("%d records loaded (%d listed), %d sane, %d catalogs written, %d icons hashed",
		result.RecordsLoaded, result.RecordsListed, result.RecordsSane,
		len(result.CatalogsWritten), result.IconsHashed)
}
