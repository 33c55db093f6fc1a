package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints the current ranking from the configured store.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd.Context(), *configPath, limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries to print (0 for all)")
	return cmd
}

func runLeaderboard(ctx context.Context, configPath string, limit int, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// keep stdout for the table
	log := logger.Nop()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := app.NewRecordManager(st.attempts, nil, log).Leaderboard(ctx)
	if err != nil {
		return err
	}
	return printLeaderboard(out, entries, limit)
}

func printLeaderboard(out io.Writer, entries []domain.LeaderboardEntry, limit int) error {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSCORE\tTOPIC")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, e.Name, e.Score, e.Topic)
	}
	return w.Flush()
}
