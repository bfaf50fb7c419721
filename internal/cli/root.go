// Package cli provides the command-line interface for creassist.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/appstate"
	"github.com/raphaelgruber/creassist/internal/client"
	"github.com/raphaelgruber/creassist/internal/config"
	"github.com/raphaelgruber/creassist/internal/metrics"
	"github.com/raphaelgruber/creassist/internal/notify"
	"github.com/raphaelgruber/creassist/internal/service"
	"github.com/raphaelgruber/creassist/internal/session"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	apiURL  string

	// Global config and wiring
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	collector *metrics.Collector
	apiClient *client.Client
	center    *notify.Center
	state     *appstate.State

	authSvc      *service.AuthService
	docSvc       *service.DocumentService
	portfolioSvc *service.PortfolioService
	sessions     *session.Manager

	// Terminal I/O. One reader is shared so prompts and the chat REPL
	// never lose buffered input to each other.
	stdin  = bufio.NewReader(os.Stdin)
	stdout io.Writer = os.Stdout
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "creassist",
	Short: "AI Commercial Real Estate Assistant",
	Long: `creassist is a terminal client for the AI Commercial Real Estate Assistant.

Chat with the assistant about your property portfolio, keep a history of
conversations, upload documents to the knowledge base, and run portfolio
queries against the backend at CRE_API_URL.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if apiURL != "" {
			cfg.APIURL = strings.TrimRight(apiURL, "/")
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLog = config.SetupLogger(cfg.LogFile, level)

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.APIURL,
			client.WithTimeout(cfg.ClientTimeout),
			client.WithLogger(logger),
			client.WithMetrics(collector),
		)

		center = notify.NewCenter(cfg.NotifyDuration)
		center.Subscribe(printNotification)

		var err error
		state, err = appstate.Load(cfg.ProfileFile)
		if err != nil {
			logger.Warn("ignoring unreadable profile", "error", err, "file", cfg.ProfileFile)
		}

		opts := []service.Option{service.WithNotifier(center), service.WithLogger(logger)}
		authSvc = service.NewAuthService(apiClient, state, opts...)
		docSvc = service.NewDocumentService(apiClient, opts...)
		portfolioSvc = service.NewPortfolioService(apiClient, opts...)
		sessions = session.NewManager(apiClient, apiClient,
			session.WithNotifier(center),
			session.WithLogger(logger),
		)

		logger.Debug("client configured", "api_url", cfg.APIURL, "profile", cfg.ProfileFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if center != nil {
			center.Close()
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides CRE_API_URL)")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usageCmd)
}

// requireUser returns the signed-in user's id or a hint to log in.
func requireUser() (string, error) {
	u, err := authSvc.RequireUser()
	if err != nil {
		return "", fmt.Errorf("%w: run 'creassist login' or 'creassist signup' first", err)
	}
	return u.ID, nil
}

// readLine prompts and returns one trimmed line of input.
func readLine(prompt string) (string, error) {
	fmt.Fprint(stdout, prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(question string) bool {
	fmt.Fprintln(stdout, question)
	response, err := readLine("\nContinue? [y/N]: ")
	if err != nil {
		return false
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}
