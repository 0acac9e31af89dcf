package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage client settings",
	Long: `View and configure the backend connection and sync behaviour.

Use subcommands to change a single setting or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsURLCmd = &cobra.Command{
	Use:   "set-url [url]",
	Short: "Set the backend API URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsURL,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Set the API bearer token",
	Long:  `Reads the token from the terminal without echoing it. Empty input keeps the current token.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsToken,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsURLCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Base URL: %s\n", settings.API.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	if settings.API.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.API.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	if settings.API.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.API.RequestsPerSecond)
	} else {
		cmd.Printf("  Rate limit: off\n")
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Cache TTL: %s\n", settings.Sync.CacheTTL)
	cmd.Printf("  Max retries: %d\n", settings.Sync.MaxRetries)
	cmd.Printf("  Retry delay: %s\n", settings.Sync.RetryDelay)
	cmd.Printf("  Queue retention: %s\n", settings.Sync.QueueRetention)
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Probe interval: %s\n", settings.Watch.ProbeInterval)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data dir: %s\n", dataDir)

	return nil
}

func runSettingsURL(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	if err := svc.Settings.SetBaseURL(args[0]); err != nil {
		return fmt.Errorf("failed to set base url: %w", err)
	}
	cmd.Printf("Backend URL set to %s\n", strings.TrimRight(args[0], "/"))
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("API token: ")
	settings.API.Token = readSecret(cmd.InOrStdin())
	cmd.Println()

	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if settings.API.Token == "" {
		cmd.Println("Token unchanged.")
		return nil
	}
	cmd.Printf("Token set to %s\n", maskAPIKey(settings.API.Token))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("questsync Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Backend URL [%s]: ", settings.API.BaseURL)
	if input := readLine(reader); input != "" {
		if err := svc.Settings.SetBaseURL(input); err != nil {
			return fmt.Errorf("failed to set base url: %w", err)
		}
		if settings, err = svc.Settings.Get(); err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
	}

	cmd.Printf("Request timeout [%s]: ", settings.API.Timeout)
	settings.API.Timeout = parseDurationInput(readLine(reader), settings.API.Timeout)

	cmd.Printf("Cache TTL [%s]: ", settings.Sync.CacheTTL)
	settings.Sync.CacheTTL = parseDurationInput(readLine(reader), settings.Sync.CacheTTL)

	cmd.Printf("Probe interval [%s]: ", settings.Watch.ProbeInterval)
	settings.Watch.ProbeInterval = parseDurationInput(readLine(reader), settings.Watch.ProbeInterval)

	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseDurationInput returns defaultVal for empty or invalid input.
func parseDurationInput(input string, defaultVal time.Duration) time.Duration {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// readSecret reads without echo when in is a terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
