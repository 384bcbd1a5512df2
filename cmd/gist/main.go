package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"legalgist/internal/app"
	"legalgist/internal/chat"
	"legalgist/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// apiKey may be linked into the binary with -ldflags "-X main.apiKey=...".
var apiKey string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a GistApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "send", "chat-list").
func newApp(cmd *cobra.Command, operation string) (*app.GistApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewGistApp(cmd.Context(), cfg, operation, app.Options{
		LinkedAPIKey: apiKey,
		Passphrase:   func() (string, error) { return readPassphrase("Passphrase: ") },
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase returns GIST_PASSPHRASE if set, otherwise prompts without echo.
func readPassphrase(prompt string) (string, error) {
	if p, ok := os.LookupEnv("GIST_PASSPHRASE"); ok {
		return p, nil
	}
	return readSecret(prompt)
}

// readSecret reads one line from stdin, without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var rootCmd = &cobra.Command{
	Use:          "gist",
	Short:        "Chat with Gemini about your legal documents",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := app.LoadEnv(".env"); err != nil {
			return err
		}
		defaults, err := app.GetDefaults()
		if err != nil {
			return err
		}
		return app.LoadEnv(filepath.Join(defaults.BaseDir, ".env"))
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s %s\n", cfg.Storage.Type, cfg.Storage.Path)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Staging:    %s\n", cfg.Staging.Type)
		fmt.Printf("Transport:  %s\n", cfg.LLM.Transport)
		return nil
	},
}

var configKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the key pair for encrypted storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		pass, err := readPassphrase("New passphrase: ")
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		if _, ok := os.LookupEnv("GIST_PASSPHRASE"); !ok {
			confirm, err := readSecret("Confirm passphrase: ")
			if err != nil {
				return fmt.Errorf("reading passphrase: %w", err)
			}
			if confirm != pass {
				return errors.New("passphrases do not match")
			}
		}

		if err := app.SetupEncryption(cfg.Encryption, pass); err != nil {
			return err
		}

		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// identity commands
var loginCmd = &cobra.Command{
	Use:   "login EMAIL NAME",
	Short: "Set the local identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "login")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Login(args[0], args[1])
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		fmt.Printf("Logged in as %s <%s>\n", id.Name, id.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the local identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}

		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the local identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		id := a.CurrentIdentity()
		if id == nil {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("%s <%s>\n", id.Name, id.Email)
		fmt.Printf("ID: %s\n", id.ID)
		return nil
	},
}

// key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "key-set")
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := readSecret("Gemini API key: ")
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}

		if err := a.SaveAPIKey(key); err != nil {
			return err
		}

		fmt.Println("API key saved.")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "key-clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearAPIKey(); err != nil {
			return err
		}

		fmt.Println("API key removed.")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which API key is in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "key-status")
		if err != nil {
			return err
		}
		defer a.Close()

		switch a.APIKeySource() {
		case chat.KeySourceConfigured:
			fmt.Println("Using the configured API key.")
		case chat.KeySourceStored:
			fmt.Println("Using the stored API key.")
		default:
			fmt.Println("No API key set.")
		}
		return nil
	},
}

// chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage conversations",
}

var chatNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-new")
		if err != nil {
			return err
		}
		defer a.Close()

		conv, err := a.NewConversation()
		if err != nil {
			return fmt.Errorf("creating conversation: %w", err)
		}

		fmt.Printf("Started conversation %s\n", conv.ID)
		return nil
	},
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-list")
		if err != nil {
			return err
		}
		defer a.Close()

		convs := a.Conversations()
		if len(convs) == 0 {
			fmt.Println("No conversations.")
			return nil
		}

		var activeID string
		if active := a.ActiveConversation(); active != nil {
			activeID = active.ID
		}

		for _, c := range convs {
			marker := " "
			if c.ID == activeID {
				marker = "*"
			}
			fmt.Printf("%s %s  %-33s  %3d  %s\n",
				marker,
				c.ID,
				c.Title,
				len(c.Messages),
				c.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show a conversation (the active one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-show")
		if err != nil {
			return err
		}
		defer a.Close()

		var id string
		if len(args) > 0 {
			id = args[0]
		}

		conv, err := a.Conversation(id)
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s\n", conv.ID, conv.Title)
		for _, m := range conv.Messages {
			printMessage(m)
		}
		return nil
	},
}

var chatUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Make a conversation active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-use")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UseConversation(args[0]); err != nil {
			return err
		}

		fmt.Printf("Active conversation: %s\n", args[0])
		return nil
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteConversation(args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted conversation %s\n", args[0])
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "chat-clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearConversations(); err != nil {
			return err
		}

		fmt.Println("All conversations deleted.")
		return nil
	},
}

// send command
var sendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: "Send a message to the active conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringArray("attach")

		a, err := newApp(cmd, "send")
		if err != nil {
			return err
		}
		defer a.Close()

		var message string
		if len(args) > 0 {
			message = args[0]
		}

		res, err := a.Send(cmd.Context(), message, files)
		if err != nil {
			return err
		}

		fmt.Println(res.Reply.Content)
		return nil
	},
}

func printMessage(m *chat.Message) {
	author := string(m.Role)
	if m.Role == chat.RoleUser && m.AuthorName != "" {
		author = m.AuthorName
	}

	fmt.Printf("\n[%s] %s (%s)\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"), author, m.Role)
	for _, att := range m.Attachments {
		fmt.Printf("  attachment: %s (%d bytes)\n", att.Name, att.Size)
	}
	fmt.Println(m.Content)
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeygenCmd)

	// key subcommands
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyStatusCmd)

	// chat subcommands
	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatUseCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatClearCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringArrayP("attach", "a", nil, "Attach a PDF file (repeatable)")
}
