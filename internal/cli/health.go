package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check store integrity",
		Long:  "Run integrity checks on the database. Exits nonzero when problems are found.",
		Run:   runHealth,
	}

	RootCmd.AddCommand(cmd)
}

func runHealth(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	health := s.HealthCheck(cmd.Context())
	b, _ := json.MarshalIndent(health, "", "  ")
	fmt.Println(string(b))

	if !health.OK {
		os.Exit(1)
	}
}
