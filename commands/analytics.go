package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/services"
	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the K/D trend, performance score and win rate of an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		key := a.cfg.OwnerKey
		if cmd.Flags().Changed("owner") {
			key, _ = cmd.Flags().GetString("owner")
		}
		ctx := commandContext(cmd)
		owner, err := a.store.Users.GetByKey(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: %q", services.ErrOwnerNotFound, key)
		}

		summary, err := a.analytics().Summary(ctx, owner.ID)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), summary)
		}
		return printSummary(cmd.OutOrStdout(), owner.Nickname, summary)
	},
}

func init() {
	analyticsCmd.Flags().String("owner", "", "Owner nickname or email (overrides OWNER_KEY)")
	analyticsCmd.Flags().Bool("json", false, "Print the summary as JSON")
}

func printSummary(w io.Writer, owner string, s *models.AnalyticsSummary) error {
	fmt.Fprintf(w, "owner:        %s\n", owner)
	fmt.Fprintf(w, "matches:      %d (window %d)\n", s.MatchesConsidered, s.Window)
	fmt.Fprintf(w, "k/d ratio:    %.2f\n", s.KDRatio)
	fmt.Fprintf(w, "performance:  %.1f\n", s.AveragePerformance)
	fmt.Fprintf(w, "win rate:     %d%%\n", s.WinRate)
	if len(s.Trend) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tSTARTED\tK/D\tSCORE\tRESULT")
	for _, p := range s.Trend {
		result := "loss"
		if p.Win {
			result = "win"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.1f\t%s\n", p.MatchID, p.StartTime.Format("2006-01-02 15:04"), p.KD, p.PerformanceScore, result)
	}
	return tw.Flush()
}
