package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Daily advice from today's log",
		Run:   runSuggest,
	}

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	a, s, err := newAgent()
	if err != nil {
		exitErr("start agent", err)
	}
	defer s.Close()

	out, err := a.Suggest(cmd.Context(), userFlag)
	if err != nil {
		exitErr("suggest", err)
	}
	fmt.Println(out)
}
