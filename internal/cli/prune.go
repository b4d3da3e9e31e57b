package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/habit-agent/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete observations older than the retention window",
		Long:  "Hard-delete observations across all users whose date is older than the retention window from config (or --days).",
		Run:   runPrune,
	}

	cmd.Flags().Int("days", 0, "Override retention window in days")

	RootCmd.AddCommand(cmd)
}

func runPrune(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		days = cfg.RetentionDays
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cutoff := model.DateOf(time.Now().UTC().AddDate(0, 0, -days))
	pruned, err := s.PruneObservations(cmd.Context(), cutoff)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Printf(`{"ok":true,"pruned":%d,"older_than":%q}`+"\n", pruned, cutoff)
}
