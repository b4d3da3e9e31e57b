package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the habit tracker",
		Long:  "Send one message, or start an interactive session when no message is given. Type 'exit' to leave the session.",
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	a, s, err := newAgent()
	if err != nil {
		exitErr("start agent", err)
	}
	defer s.Close()

	if len(args) > 0 {
		reply, err := a.Respond(cmd.Context(), userFlag, strings.Join(args, " "))
		if err != nil {
			exitErr("respond", err)
		}
		fmt.Println(reply.Text)
		return
	}

	fmt.Println("habit-agent ready. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		reply, err := a.Respond(cmd.Context(), userFlag, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply.Text)
	}
}
