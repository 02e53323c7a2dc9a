package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kbukum/meetingmind/credentials"
)

var authKey string

// authCmd manages the Gemini API key in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Gemini API key",
	Long: `Store, inspect or remove the Gemini API key kept in the system keyring.

A key set in the config file, MEETINGMIND_LLM_API_KEY or GEMINI_API_KEY takes
precedence over the stored key.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key in the system keyring",
	Long: `Store the Gemini API key in the system keyring. Without --key the key is
read from a hidden prompt, or from the first line of stdin when it is not a
terminal.

Examples:
  meetingmind auth set-key
  echo "$KEY" | meetingmind auth set-key`,
	Args: cobra.NoArgs,
	RunE: runAuthSetKey,
}

var authClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := keyStore.Delete(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API key removed from %s.\n", keyStore.Description())
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which API key is in use",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authSetKeyCmd.Flags().StringVar(&authKey, "key", "", "API key (visible in shell history; prefer the prompt)")

	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authClearKeyCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthSetKey(cmd *cobra.Command, _ []string) error {
	key := authKey
	if key == "" {
		var err error
		key, err = promptForKey(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	if err := keyStore.Set(key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API key stored in %s.\n", keyStore.Description())
	return nil
}

// promptForKey reads the key without echo when stdin is a terminal.
func promptForKey(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Gemini API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no API key provided")
	}
	return line, nil
}

type authStatus struct {
	Dialect string             `json:"dialect"`
	Source  credentials.Source `json:"source,omitempty"`
	Key     string             `json:"key,omitempty"`
	Store   string             `json:"store"`
	Error   string             `json:"error,omitempty"`
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	st := authStatus{Dialect: cfg.LLM.Dialect, Store: keyStore.Description()}
	key, source, err := credentials.ResolveAPIKey(cfg.LLM.APIKey, keyStore)
	if err != nil {
		st.Error = err.Error()
	} else {
		st.Source = source
		st.Key = credentials.Mask(key, 4)
	}

	w := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Dialect: %s\n", st.Dialect)
	switch {
	case errors.Is(err, credentials.ErrNoAPIKey):
		fmt.Fprintln(w, "API key: not set")
		fmt.Fprintln(w, "\nSet GEMINI_API_KEY or run `meetingmind auth set-key`.")
	case err != nil:
		fmt.Fprintf(w, "API key: unavailable (%v)\n", err)
	case source == credentials.SourceKeyring:
		fmt.Fprintf(w, "API key: %s (from %s)\n", st.Key, st.Store)
	default:
		fmt.Fprintf(w, "API key: %s (from configuration or environment)\n", st.Key)
	}
	return nil
}
