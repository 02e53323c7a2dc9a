// Package main provides the meetingmind CLI: the HTTP analysis service,
// one-shot transcript analysis, local recording and API key management.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/meetingmind/app"
	"github.com/kbukum/meetingmind/bootstrap"
	"github.com/kbukum/meetingmind/config"
	"github.com/kbukum/meetingmind/credentials"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// Global flags and state.
var (
	cfgFile      string
	envFile      string
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *app.Config

	// keyStore holds the Gemini API key outside the config.
	keyStore credentials.Store = credentials.NewKeyringStore()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "meetingmind",
	Short: "Meeting intelligence from transcripts",
	Long: `meetingmind extracts structured meeting intelligence (summary, action items,
decisions, topics, sentiment) from a transcript using a generative model.

COMMON WORKFLOWS:
  Run the API:        meetingmind serve
  Analyze a file:     meetingmind analyze transcript.txt
  Quick summary:      cat transcript.txt | meetingmind summarize
  Record a meeting:   meetingmind record --script lines.txt --analyze
  Store the API key:  meetingmind auth set-key

CONFIGURATION:
  config.yml (./, ./config/ or the user config dir), .env, MEETINGMIND_*
  variables and GEMINI_API_KEY / GEMINI_MODEL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipConfig(cmd) {
			return nil
		}
		if outputFormat != outputText && outputFormat != outputJSON {
			return fmt.Errorf("invalid --output %q: want text or json", outputFormat)
		}
		c, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file to load")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format: text or json")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

func skipConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

func loadConfig() (*app.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	c, err := app.Load(opts...)
	if err != nil {
		return nil, err
	}
	if debug {
		c.Debug = true
		c.Logging.Level = "debug"
	}
	return c, nil
}

// newTaskApp creates the lifecycle for a one-shot command. Logs stay quiet
// unless --debug or a configured level asks otherwise.
func newTaskApp() (*bootstrap.App[*app.Config], error) {
	if cfg.Logging.Level == "" && !debug {
		cfg.Logging.Level = "warn"
	}
	return bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
}

// buildTask creates a task app and its analysis stack. Only Redis is
// registered; the LLM health check is left to serve.
func buildTask() (*bootstrap.App[*app.Config], *app.Stack, error) {
	application, err := newTaskApp()
	if err != nil {
		return nil, nil, err
	}
	stack, err := app.Build(cfg, keyStore, application.Logger)
	if err != nil {
		return nil, nil, err
	}
	if stack.Redis != nil {
		if err := application.RegisterComponent(stack.Redis); err != nil {
			return nil, nil, err
		}
	}
	return application, stack, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
