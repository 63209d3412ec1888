package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"ytrelink/pkg/auth"
	"ytrelink/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage YouTube OAuth credentials",
	Long: `Manage stored YouTube OAuth credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only, for CI)

Never share your client secret or refresh token!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Authorize access to your channel",
	Long: `Authorize ytrelink to edit your channel's video descriptions.

You will be prompted for the OAuth client ID and secret of a Desktop app
client. A browser window then opens Google's consent page; after you
approve, the refresh token is stored under the given name ("default" when
omitted).`,
	Example: `  # Interactive login
  ytrelink auth login

  # Store under a specific name
  ytrelink auth login brand-channel`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored credentials",
	Long: `Remove stored credentials.

If no name is provided, you will be shown a list of stored accounts
to choose from.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with secrets masked.`,
	Run:   runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show which credentials a run would use",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowOAuthSetupGuide()

	if existing, _ := manager.Retrieve(name); existing != nil && !fromEnvironment(existing) {
		fmt.Printf("Account '%s' already exists. Replace it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("OAuth client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		ui.PrintError("Failed to read client ID", err.Error())
		os.Exit(1)
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		ui.PrintError("Client ID is required")
		os.Exit(1)
	}

	fmt.Print("OAuth client secret (hidden): ")
	clientSecret, err := readPassword(reader)
	if err != nil {
		ui.PrintError("Failed to read client secret", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cfg := auth.OAuthConfig(clientID, clientSecret, auth.GoogleEndpoint)
	tok, err := auth.Login(ctx, cfg, openBrowser)
	if err != nil {
		ui.PrintError("Authorization failed", err.Error())
		os.Exit(1)
	}

	cred := &auth.Credential{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
	cred.SetToken(tok)

	if err := manager.Store(cred); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))
	fmt.Println("\nNext steps:")
	fmt.Println("  ytrelink run --dry-run")
	if name != auth.DefaultName {
		fmt.Printf("  ytrelink run --account %s\n", name)
	}
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		creds, err := manager.List()
		if err != nil || len(creds) == 0 {
			ui.PrintError("No stored accounts found")
			return
		}

		fmt.Println("Select account to remove:")
		for i, cred := range creds {
			fmt.Printf("  %d. %s\n", i+1, cred.Name)
		}
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)
		if choice == 0 {
			return
		}
		if choice < 0 || choice > len(creds) {
			ui.PrintError("Invalid choice")
			os.Exit(1)
		}
		name = creds[choice-1].Name
	}

	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	creds, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(creds) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'ytrelink auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, cred := range creds {
		printCredential(i+1, auth.SanitizeCredential(cred))
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	cred, err := manager.Retrieve(name)
	if err != nil {
		ui.PrintError("Not authorized", err.Error())
		fmt.Println("\nRun 'ytrelink auth login' to authorize.")
		os.Exit(1)
	}

	source := "credential store"
	if fromEnvironment(cred) {
		source = "environment"
	}
	ui.PrintInfo("Source", source)
	printCredential(0, auth.SanitizeCredential(cred))
}

func printCredential(index int, cred *auth.Credential) {
	if index > 0 {
		fmt.Printf("%d. Name: %s\n", index, cred.Name)
	} else {
		fmt.Printf("Name: %s\n", cred.Name)
	}
	fmt.Printf("   Client ID: %s\n", cred.ClientID)
	fmt.Printf("   Refresh Token: %s\n", cred.RefreshToken)
	if cred.Expiry.IsZero() {
		fmt.Println("   Access Token: (none, refreshed on first use)")
	} else if cred.Expiry.Before(time.Now()) {
		fmt.Printf("   Access Token: expired %s\n", cred.Expiry.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("   Access Token: valid until %s\n", cred.Expiry.Format("2006-01-02 15:04:05"))
	}
	if !cred.LastModified.IsZero() {
		fmt.Printf("   Last Modified: %s\n", cred.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

// openBrowser prints the consent URL and tries to open it
func openBrowser(url string) error {
	fmt.Println("\nOpen this URL to authorize ytrelink:")
	fmt.Printf("  %s\n\n", url)
	fmt.Println("Waiting for the browser redirect...")

	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	// The printed URL is enough when no browser can be launched
	_ = c.Start()
	return nil
}

// readPassword reads a secret from stdin without echoing
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
