package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/creassist/internal/session"
)

var (
	askSession string
	askOutput  string
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the reply",
	Long: `Send a single message to the assistant and print its reply.

Without an argument the message is read from stdin.
Use --session to continue a saved conversation.

Examples:
  creassist ask "Show me Broadway properties"
  creassist ask "What is the average rent per square foot?" --session 3f2a9c
  echo "Find properties with high GCI potential" | creassist ask
  creassist ask "Summarize my portfolio" -o summary.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue a saved session")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "write the reply to a file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor := authSvc.ActorID()

	message, err := askMessage(args)
	if err != nil {
		return err
	}

	if askSession != "" {
		if _, err := requireUser(); err != nil {
			return err
		}
		if _, err := sessions.Select(ctx, actor, askSession); err != nil {
			return err
		}
	}

	res := sessions.Send(ctx, actor, message)
	switch res.Status {
	case session.StatusDelivered:
	case session.StatusFailed:
		return fmt.Errorf("chat: %w", res.Err)
	default:
		return fmt.Errorf("message not sent (%s)", res.Status)
	}

	if askOutput != "" {
		if err := os.WriteFile(askOutput, []byte(res.Reply.Content+"\n"), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stdout, "Reply written to %s\n", askOutput)
		return nil
	}
	fmt.Fprintln(stdout, res.Reply.Content)

	if active := sessions.Active(); active != nil && !active.IsDraft() && verbose {
		fmt.Fprintf(os.Stderr, "session: %s\n", active.ID)
	}
	return nil
}

// askMessage takes the message from args, or from stdin when it is piped.
func askMessage(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no message given")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
