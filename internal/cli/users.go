package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users present in the store",
		Run:   runUsers,
	}

	RootCmd.AddCommand(cmd)
}

func runUsers(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	users, err := s.Users(cmd.Context())
	if err != nil {
		exitErr("users", err)
	}
	for _, u := range users {
		fmt.Println(u)
	}
}
