package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/habit-agent/internal/model"
	"github.com/rcliao/habit-agent/internal/store"
	"github.com/rcliao/habit-agent/internal/trend"
)

func init() {
	cmd := &cobra.Command{
		Use:       "trend [duration|calories]",
		Short:     "Chart per-day totals",
		Long:      "Render a text chart of per-day totals for one observation kind. Defaults to duration.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"duration", "calories"},
		Run:       runTrend,
	}

	cmd.Flags().String("since", "", "Only dates >= this (YYYY-MM-DD)")
	cmd.Flags().IntP("width", "w", 40, "Chart width in cells")

	RootCmd.AddCommand(cmd)
}

func runTrend(cmd *cobra.Command, args []string) {
	since, _ := cmd.Flags().GetString("since")
	width, _ := cmd.Flags().GetInt("width")

	kind, unit := model.KindDuration, "min"
	if len(args) > 0 && args[0] == "calories" {
		kind, unit = model.KindCalories, "kcal"
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	obs, err := s.ListObservations(cmd.Context(), store.ObservationParams{
		UserID: userFlag,
		Kind:   kind,
		Since:  since,
	})
	if err != nil {
		exitErr("list observations", err)
	}

	points := trend.Aggregate(obs, kind)
	fmt.Print(trend.RenderBars(points, unit, width))
}
