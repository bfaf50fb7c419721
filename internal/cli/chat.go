package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/service"
	"github.com/raphaelgruber/creassist/internal/session"
)

var (
	chatSession string
	chatNew     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Long: `Start an interactive chat with the AI Commercial Real Estate Assistant.

Type a message and press Enter. Lines starting with / are commands;
type /help for the list. Signed-in users get their conversations saved
to the chat history.

Examples:
  creassist chat
  creassist chat --session 3f2a9c
  creassist chat --new "Q3 leasing review"`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "resume a saved session")
	chatCmd.Flags().StringVar(&chatNew, "new", "", "start a new saved session with this title")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	r := newREPL(sessions, authSvc.ActorID(), stdout)
	r.loggedIn = state.LoggedIn()

	fmt.Fprintf(stdout, "%s\n", defaultTheme.statusStyle().Render("AI CRE Assistant · "+authSvc.Current().DisplayName()))

	if r.loggedIn {
		_, _ = sessions.Refresh(ctx, r.actor)
	}
	switch {
	case chatSession != "":
		if _, err := sessions.Select(ctx, r.actor, chatSession); err != nil {
			return err
		}
	case chatNew != "":
		if _, err := sessions.Create(ctx, r.actor, chatNew); err != nil {
			return err
		}
	}

	r.printLog()
	fmt.Fprintln(stdout, defaultTheme.hintStyle().Render("Type /help for commands, /quit to leave."))
	return r.run(ctx)
}

// repl is the interactive chat loop.
type repl struct {
	m        *session.Manager
	actor    string
	loggedIn bool
	out      io.Writer
	now      func() time.Time
	listed   []models.SessionSummary
	read     func(prompt string) (string, error)
	confirm  func(question string) bool
}

func newREPL(m *session.Manager, actor string, out io.Writer) *repl {
	return &repl{
		m:       m,
		actor:   actor,
		out:     out,
		now:     time.Now,
		read:    readLine,
		confirm: confirm,
	}
}

func (r *repl) run(ctx context.Context) error {
	for {
		line, err := r.read("\nyou> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		quit, err := r.handle(ctx, line)
		if err != nil {
			// Failures were already reported as notifications; the loop stays usable.
			logger.Debug("chat command failed", "input", line, "error", err)
		}
		if quit {
			return nil
		}
	}
}

// handle processes one input line. It reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, r.send(ctx, line)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help":
		r.printHelp()
		return false, nil
	case "clear":
		r.m.Clear()
		r.printLog()
		return false, nil
	case "quick":
		return false, r.quick(ctx, arg)
	case "export":
		return false, r.export(arg)
	case "stats":
		return false, r.stats(ctx)
	}

	if !r.loggedIn {
		fmt.Fprintln(r.out, defaultTheme.warningStyle().Render("Chat history needs a signed-in user. Run 'creassist login' first."))
		return false, service.ErrNotLoggedIn
	}

	switch name {
	case "new":
		if _, err := r.m.Create(ctx, r.actor, arg); err != nil {
			return false, err
		}
		r.printLog()
	case "sessions", "history":
		return false, r.listSessions(ctx, arg)
	case "open":
		id, err := r.resolve(arg)
		if err != nil {
			return false, err
		}
		if _, err := r.m.Select(ctx, r.actor, id); err != nil {
			return false, err
		}
		r.printLog()
	case "rename":
		active := r.m.Active()
		if active == nil || active.IsDraft() {
			fmt.Fprintln(r.out, "Only saved sessions can be renamed.")
			return false, nil
		}
		return false, r.m.Rename(ctx, active.ID, arg)
	case "delete":
		id := arg
		if id == "" {
			if active := r.m.Active(); active != nil {
				id = active.ID
			}
		} else if resolved, err := r.resolve(arg); err == nil {
			id = resolved
		}
		if id == "" {
			fmt.Fprintln(r.out, "Nothing to delete.")
			return false, nil
		}
		deleted, err := r.m.Delete(ctx, id, func(s models.SessionSummary) bool {
			return r.confirm(fmt.Sprintf("About to delete: %s (%s)", s.Title, s.ID))
		})
		if err != nil {
			return false, err
		}
		if !deleted {
			fmt.Fprintln(r.out, "Cancelled.")
		} else if r.m.Active() == nil {
			fmt.Fprintln(r.out, "Session deleted. Use /new or /open to continue.")
		}
	default:
		fmt.Fprintf(r.out, "Unknown command /%s. Type /help for commands.\n", name)
	}
	return false, nil
}

func (r *repl) send(ctx context.Context, text string) error {
	if r.m.Active() == nil {
		r.m.NewDraft()
	}
	fmt.Fprintln(r.out, defaultTheme.hintStyle().Render("Assistant is typing..."))

	res := r.m.Send(ctx, r.actor, text)
	switch res.Status {
	case session.StatusDelivered, session.StatusFailed:
		r.printMessage(*res.Reply)
	case session.StatusIgnored:
		fmt.Fprintln(r.out, "Still waiting for the previous reply.")
	}
	return res.Err
}

func (r *repl) quick(ctx context.Context, arg string) error {
	if arg == "" {
		for i, q := range session.QuickActions {
			fmt.Fprintf(r.out, "  %d. %-18s %s\n", i+1, q.Label, q.Message)
		}
		return nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(session.QuickActions) {
		return fmt.Errorf("quick action %q: pick 1-%d", arg, len(session.QuickActions))
	}
	q := session.QuickActions[n-1]
	fmt.Fprintf(r.out, "you> %s\n", q.Message)
	return r.send(ctx, q.Message)
}

func (r *repl) export(dir string) error {
	if dir == "" {
		dir = "."
	}
	path, err := r.m.Export(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved %s\n", path)
	return nil
}

func (r *repl) stats(ctx context.Context) error {
	stats, err := portfolioSvc.Stats(ctx)
	if err != nil {
		return err
	}
	printPortfolioStats(r.out, stats)
	return nil
}

func (r *repl) listSessions(ctx context.Context, filter string) error {
	if _, err := r.m.Refresh(ctx, r.actor); err != nil {
		return err
	}
	r.listed = r.m.Filter(filter)
	printSessions(r.out, r.listed, r.now())
	return nil
}

// resolve maps "/open 2" to the second listed session; anything else is an id.
func (r *repl) resolve(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("missing session number or id")
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(r.listed) {
		return r.listed[n-1].ID, nil
	}
	return arg, nil
}

func (r *repl) printLog() {
	active := r.m.Active()
	if active == nil {
		fmt.Fprintln(r.out, "No active session.")
		return
	}
	fmt.Fprintln(r.out, defaultTheme.statusStyle().Render("── "+active.Title+" ──"))
	for _, msg := range active.Messages {
		r.printMessage(msg)
	}
}

func (r *repl) printMessage(msg models.Message) {
	label := defaultTheme.completedStyle().Render("assistant>")
	if msg.Role == models.RoleUser {
		label = defaultTheme.statusStyle().Render("you>")
	}
	fmt.Fprintf(r.out, "%s %s\n", label, msg.Content)
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `Commands:
  /new [title]        start a new saved session
  /sessions [filter]  list saved sessions
  /open <n|id>        open a listed session
  /rename <title>     rename the current session
  /delete [n|id]      delete a session (default: current)
  /export [dir]       save the transcript as a text file
  /clear              start over with a fresh chat
  /quick [n]          list or send a quick prompt
  /stats              show portfolio statistics
  /quit               leave the chat
`)
}

// printSessions renders a numbered session list.
func printSessions(w io.Writer, list []models.SessionSummary, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No chat history yet.")
		return
	}
	fmt.Fprintf(w, "Sessions (%d):\n\n", len(list))
	for i, s := range list {
		fmt.Fprintf(w, "%3d. %s\n", i+1, s.Title)
		fmt.Fprintf(w, "     %s · %d messages · %s\n", session.RelativeDate(s.UpdatedAt.Time, now), s.MessageCount, s.ID)
	}
}
