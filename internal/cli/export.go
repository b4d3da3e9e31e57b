package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's data as JSON",
		Long:  "Dump the user's messages and observations as JSON on stdout. Feed it back with import.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	dump, err := s.ExportUser(cmd.Context(), userFlag)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(dump, "", "  ")
	fmt.Println(string(b))
}
