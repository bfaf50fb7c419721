package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/creassist/internal/models"
)

var (
	loginEmail string

	signupName        string
	signupEmail       string
	signupCompany     string
	signupPreferences string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long: `Sign in and remember the user in the local profile.

The backend does not verify credentials yet; the password is read but not checked.

Examples:
  creassist login
  creassist login --email dana@acme.com`,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create a CRM user on the backend and sign in as that user.

Examples:
  creassist signup
  creassist signup --name "Dana Broker" --email dana@acme.com --company "Acme Realty"`,
	RunE: runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authSvc.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := authSvc.Current()
		fmt.Fprintln(stdout, u.DisplayName())
		if u != nil && verbose {
			fmt.Fprintf(stdout, "  ID:    %s\n  Email: %s\n", u.ID, u.Email)
		}
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the CRM profile of the signed-in user",
	Long: `Update the signed-in user's CRM profile and review what the CRM logged.

Subcommands:
  update         Change name, email, company or preferences
  conversations  Print the messages logged for this user
  tag            Label a logged message

Examples:
  creassist account update --company "Acme Realty"
  creassist account conversations
  creassist account tag 42 lead`,
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	RunE:  runAccountUpdate,
}

var accountConversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Print the messages logged for this user",
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := authSvc.Conversations(context.Background())
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Fprintln(stdout, "No conversations logged.")
			return nil
		}
		for _, msg := range msgs {
			fmt.Fprintf(stdout, "[%s] %s: %s\n", msg.Timestamp.Format(time.DateTime), msg.Role, msg.Content)
		}
		return nil
	},
}

var accountTagCmd = &cobra.Command{
	Use:   "tag <message-id> <tag>",
	Short: "Label a logged message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authSvc.TagMessage(context.Background(), args[0], args[1])
	},
}

func init() {
	for _, f := range []string{"name", "email", "company", "preferences"} {
		accountUpdateCmd.Flags().String(f, "", "new "+f)
	}
	accountCmd.AddCommand(accountUpdateCmd)
	accountCmd.AddCommand(accountConversationsCmd)
	accountCmd.AddCommand(accountTagCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "email address")

	signupCmd.Flags().StringVar(&signupName, "name", "", "full name")
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "email address")
	signupCmd.Flags().StringVar(&signupCompany, "company", "", "company (optional)")
	signupCmd.Flags().StringVar(&signupPreferences, "preferences", "", "investment preferences (optional)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	email := loginEmail
	if email == "" {
		var err error
		if email, err = readLine("Email: "); err != nil {
			return err
		}
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := authSvc.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Hello, %s\n", user.Name)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fields := []struct {
		value  *string
		prompt string
	}{
		{&signupName, "Full name: "},
		{&signupEmail, "Email: "},
		{&signupCompany, "Company (optional): "},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		v, err := readLine(f.prompt)
		if err != nil {
			return err
		}
		*f.value = v
	}

	user, err := authSvc.Signup(ctx, models.SignupInput{
		Name:        signupName,
		Email:       signupEmail,
		Company:     signupCompany,
		Preferences: signupPreferences,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Hello, %s\n", user.DisplayName())
	return nil
}

// readPassword reads a line without echo when stdin is a terminal.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(prompt)
	}

	fmt.Fprint(stdout, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func runAccountUpdate(cmd *cobra.Command, args []string) error {
	var update models.UserUpdate
	fields := map[string]**string{
		"name":        &update.Name,
		"email":       &update.Email,
		"company":     &update.Company,
		"preferences": &update.Preferences,
	}
	for name, dst := range fields {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst = &v
	}

	user, err := authSvc.UpdateProfile(context.Background(), update)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, user.DisplayName())
	return nil
}
