// Package main provides the CLI entrypoint for staffapp.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/staffapp/internal/config"
	"github.com/verte-zerg/staffapp/internal/draft"
	"github.com/verte-zerg/staffapp/internal/generator"
	"github.com/verte-zerg/staffapp/internal/logging"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/report"
	"github.com/verte-zerg/staffapp/internal/tui"
	"github.com/verte-zerg/staffapp/internal/validate"
	"github.com/verte-zerg/staffapp/internal/webhook"
	"github.com/verte-zerg/staffapp/internal/wizard"
)

var version = "dev"

var (
	runFlow      string
	runWebhook   string
	runEphemeral bool

	historyLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "staffapp",
		Short:         "Staff recruitment wizard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runWizardCmd,
	}

	rootCmd.Flags().StringVar(&runFlow, "flow", validate.FlowFull, "wizard variant (full, classic)")
	rootCmd.Flags().StringVar(&runWebhook, "webhook", "", "webhook URL (overrides config)")
	rootCmd.Flags().BoolVar(&runEphemeral, "ephemeral", false, "keep drafts and the cooldown in memory only")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDraftCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// app bundles everything a command needs after configuration is resolved.
type app struct {
	settings config.Settings
	catalog  quiz.Catalog
	log      *slog.Logger
	backend  *backend
	logFile  *logging.Logger
}

func (a *app) close() {
	if a.backend != nil {
		a.backend.close()
	}
	if cerr := a.logFile.Close(); cerr != nil {
		logErrf("failed to close log: %v\n", cerr)
	}
}

func (a *app) drafts() *draft.Store {
	return draft.New(a.backend.kv, a.log)
}

func (a *app) limiter() *ratelimit.Limiter {
	return ratelimit.New(a.backend.kv, a.settings.Cooldown, a.log)
}

func loadSettings(cmd *cobra.Command, catalog quiz.Catalog) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv(config.DefaultEnvPath(), ".env")
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load environment: %w", err)
	}
	settings, err := config.Resolve(fileCfg, envCfg, catalog)
	if err != nil {
		return config.Settings{}, err
	}
	applyFlag(cmd, "flow", &settings.Flow, runFlow)
	applyFlag(cmd, "webhook", &settings.WebhookURL, runWebhook)
	if cmd.Flags().Lookup("ephemeral") != nil && runEphemeral {
		settings.Storage = config.StorageMemory
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func openApp(cmd *cobra.Command) (*app, error) {
	catalog := quiz.Default()
	settings, err := loadSettings(cmd, catalog)
	if err != nil {
		return nil, err
	}
	logFile, err := logging.Open(config.DefaultLogPath(), slog.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	log := logFile.Logger.With("version", version)

	b, err := openBackend(contextOrBackground(cmd), settings, log)
	if err != nil {
		if cerr := logFile.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return &app{settings: settings, catalog: catalog, log: log, backend: b, logFile: logFile}, nil
}

func runWizardCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("staffapp needs an interactive terminal")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	flow, err := validate.ByName(a.settings.Flow)
	if err != nil {
		return err
	}
	if a.settings.WebhookURL == "" {
		logErrln("no webhook configured; submissions will fail (run: staffapp config)")
	}

	ctx := contextOrBackground(cmd)
	sender := webhook.New(a.settings.WebhookURL, a.settings.WebhookTimeout,
		webhook.WithUserAgent("staffapp/"+version),
		webhook.WithLogger(a.log),
	)
	ctl := wizard.New(wizard.Config{
		Flow:      flow,
		Catalog:   a.catalog,
		Drafts:    a.drafts(),
		Limiter:   a.limiter(),
		Assembler: report.NewAssembler(a.settings.ReportSettings(), a.catalog),
		Sender:    sender,
		Journal:   a.backend.journal,
		UserAgent: userAgent(os.Getenv("TERM")),
		Log:       a.log,
	})

	model := tui.New(ctx, ctl, tui.Options{
		Generator: generator.New(),
		Log:       a.log,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func userAgent(termName string) string {
	termName = strings.TrimSpace(termName)
	if termName == "" {
		termName = "unknown"
	}
	return fmt.Sprintf("staffapp/%s (%s/%s; %s)", version, runtime.GOOS, runtime.GOARCH, termName)
}

// applyFlag overrides a resolved setting when the flag was given.
func applyFlag(cmd *cobra.Command, name string, target *string, value string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return
	}
	*target = value
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
