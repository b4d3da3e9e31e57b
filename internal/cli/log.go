package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/habit-agent/internal/model"
	"github.com/rcliao/habit-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the stored habit log",
		Long:  "Show extracted observations for the user. Use --messages to show raw chat turns instead.",
		Run:   runLog,
	}

	cmd.Flags().String("kind", "", "Filter by kind: duration or calories")
	cmd.Flags().String("since", "", "Only dates >= this (YYYY-MM-DD)")
	cmd.Flags().Bool("messages", false, "Show chat turns instead of observations")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	since, _ := cmd.Flags().GetString("since")
	messages, _ := cmd.Flags().GetBool("messages")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if messages {
		msgs, err := s.Snapshot(cmd.Context(), userFlag)
		if err != nil {
			exitErr("snapshot", err)
		}
		b, _ := json.MarshalIndent(msgs, "", "  ")
		fmt.Println(string(b))
		return
	}

	obs, err := s.ListObservations(cmd.Context(), store.ObservationParams{
		UserID: userFlag,
		Kind:   model.ObservationKind(kind),
		Since:  since,
	})
	if err != nil {
		exitErr("list observations", err)
	}

	b, _ := json.MarshalIndent(obs, "", "  ")
	fmt.Println(string(b))
}
