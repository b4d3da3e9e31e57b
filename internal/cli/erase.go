package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Delete everything stored for a user",
		Long:  "Permanently delete the user's messages and observations. Other users are untouched.",
		Run:   runErase,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(cmd)
}

func runErase(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("This permanently deletes all data for user %q. Type the user id to confirm: ", userFlag)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != userFlag {
			fmt.Println("aborted")
			return
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Erase(cmd.Context(), userFlag); err != nil {
		exitErr("erase", err)
	}

	fmt.Printf(`{"ok":true,"user":%q}`+"\n", userFlag)
}
