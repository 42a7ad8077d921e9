package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/staffapp/internal/config"
	"github.com/verte-zerg/staffapp/internal/history"
	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/report"
	"github.com/verte-zerg/staffapp/internal/store"
)

const defaultHistoryLimit = 20

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resubmission cooldown",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := contextOrBackground(cmd)
	now := time.Now()
	limiter := a.limiter()
	last, ok := limiter.Last(ctx)
	return writeLines(cmd, statusLines(limiter.Window(), now, limiter.Check(ctx, now), last, ok))
}

func statusLines(window time.Duration, now time.Time, st ratelimit.Status, last time.Time, hasLast bool) []string {
	lines := []string{fmt.Sprintf("Cooldown: %s", window)}
	if !hasLast {
		return append(lines, "No submission recorded.", "Submissions are open.")
	}
	lines = append(lines, fmt.Sprintf("Last submission: %s (%s)", humanize.RelTime(last, now, "ago", "from now"), last.Local().Format(time.DateTime)))
	if st.Limited {
		next := now.Add(st.Remaining)
		return append(lines, fmt.Sprintf("Next submission: %s (%dh %dm left)", humanize.RelTime(next, now, "ago", "from now"), st.Hours(), st.Minutes()))
	}
	return append(lines, "Submissions are open.")
}

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or clear the saved draft",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved draft as JSON",
		Args:  cobra.NoArgs,
		RunE:  runDraftShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		Args:  cobra.NoArgs,
		RunE:  runDraftClearCmd,
	})
	return cmd
}

func runDraftShowCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	app, ok := a.drafts().Load(contextOrBackground(cmd))
	if !ok {
		return writeLines(cmd, []string{"No draft saved."})
	}
	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return writeLines(cmd, []string{string(data)})
}

func runDraftClearCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.drafts().Clear(contextOrBackground(cmd)); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return writeLines(cmd, []string{"Draft cleared."})
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the webhook payload for the saved draft",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	app, ok := a.drafts().Load(contextOrBackground(cmd))
	if !ok {
		logErrln("no draft saved; previewing an empty application")
		app = model.DefaultApplication()
	}
	data, err := previewJSON(a.settings.ReportSettings(), a.catalog, app)
	if err != nil {
		return err
	}
	return writeLines(cmd, []string{string(data)})
}

func previewJSON(settings report.Settings, catalog quiz.Catalog, application model.Application) ([]byte, error) {
	assembler := report.NewAssembler(settings, catalog)
	rep := assembler.Assemble(application, model.Analytics{UserAgent: userAgent(os.Getenv("TERM"))})
	data, err := rep.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the local submission journal",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "last", defaultHistoryLimit, "limit to last N submissions (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	settings, err := loadSettings(cmd, quiz.Default())
	if err != nil {
		return err
	}
	st, err := store.Open(settings.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	subs, err := history.Load(contextOrBackground(cmd), st, historyLimit)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), history.Render(subs, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeLines(cmd *cobra.Command, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
