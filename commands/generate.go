package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ishikisiko/match-telemetry/services"
	"github.com/ishikisiko/match-telemetry/storage"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of synthetic matches with full telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		input := services.GenerateInput{
			Matches:  a.cfg.GenerateMatches,
			OwnerKey: a.cfg.OwnerKey,
			Seed:     a.cfg.GenerateSeed,
		}
		if cmd.Flags().Changed("matches") {
			input.Matches, _ = cmd.Flags().GetInt("matches")
		}
		if cmd.Flags().Changed("owner") {
			input.OwnerKey, _ = cmd.Flags().GetString("owner")
		}
		if cmd.Flags().Changed("seed") {
			input.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		input.Export, _ = cmd.Flags().GetBool("export")

		params, err := a.generatorParams()
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		analytics := a.analytics()
		var exporter services.ExportService
		if input.Export {
			objects, err := openObjectStore(ctx, a)
			if err != nil {
				return err
			}
			exporter = services.NewExportService(analytics, objects)
		}

		gen := services.NewGeneratorService(a.store, a.store, params, analytics, exporter, nil, a.logger)
		report, err := gen.Generate(ctx, input)
		if report != nil {
			if printErr := printJSON(cmd.OutOrStdout(), report); printErr != nil {
				return printErr
			}
		}
		return err
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate-ttd",
	Short: "Replace the round-level time-to-decision samples of an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		owner := a.cfg.OwnerKey
		if cmd.Flags().Changed("owner") {
			owner, _ = cmd.Flags().GetString("owner")
		}
		seed, _ := cmd.Flags().GetInt64("seed")

		params, err := a.generatorParams()
		if err != nil {
			return err
		}

		svc := services.NewTTDRegenerationService(a.store, a.store, params.Curve, nil, a.logger)
		report, err := svc.RegenerateRoundLevel(commandContext(cmd), owner, seed)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	generateCmd.Flags().Int("matches", 5, "Number of matches to generate (overrides GENERATE_MATCHES)")
	generateCmd.Flags().String("owner", "", "Owner nickname or email (overrides OWNER_KEY)")
	generateCmd.Flags().Int64("seed", 0, "Random seed, 0 for a fresh one (overrides GENERATE_SEED)")
	generateCmd.Flags().Bool("export", false, "Upload each match bundle to object storage")

	regenerateCmd.Flags().String("owner", "", "Owner nickname or email (overrides OWNER_KEY)")
	regenerateCmd.Flags().Int64("seed", 0, "Random seed, 0 for a fresh one")
}

func openObjectStore(ctx context.Context, a *app) (storage.ObjectStore, error) {
	if !a.cfg.StorageEnabled() {
		return nil, services.ErrStorageDisabled
	}
	return storage.NewR2Store(ctx, storage.R2Config{
		AccountID:       a.cfg.R2AccountID,
		AccessKeyID:     a.cfg.R2AccessKeyID,
		SecretAccessKey: a.cfg.R2SecretAccessKey,
		BucketName:      a.cfg.R2BucketName,
		PublicBaseURL:   a.cfg.R2PublicBaseURL,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}
