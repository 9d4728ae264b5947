package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lookout/internal/daemonctl"
	"lookout/internal/preflight"
	"lookout/internal/store"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var startLogLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the lookout daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx, startLogLevel),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "", "Override the daemon log level (debug, info, warn, error)")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the lookout daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping capture and generation...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	var restartLogLevel string
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the lookout daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx, restartLogLevel),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}
	restartCmd.Flags().StringVar(&restartLogLevel, "log-level", "", "Override the daemon log level (debug, info, warn, error)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and knowledge store status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.FetchStatus(ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Running", boolStatusKind(statusResp.Running), yesNo(statusResp.Running), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Capturing", boolStatusKind(statusResp.Capturing), yesNo(statusResp.Capturing), colorize))
			passDetail := "no passes yet"
			if statusResp.PassCount > 0 {
				passDetail = fmt.Sprintf("%d passes, last at %s", statusResp.PassCount, statusResp.LastPassAt)
			}
			passKind := statusInfo
			if statusResp.LastPassError != "" {
				passKind = statusWarn
				passDetail = fmt.Sprintf("%s (last error: %s)", passDetail, statusResp.LastPassError)
			}
			fmt.Fprintln(stdout, renderStatusLine("Generation", passKind, passDetail, colorize))
			if statusResp.PID > 0 {
				fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", statusResp.PID), colorize))
			}
			if statusResp.DatabasePath != "" {
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, statusResp.DatabasePath, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Services", colorize) {
				fmt.Fprintln(stdout, line)
			}
			llmDetail := "API key missing"
			llmKind := statusWarn
			if strings.TrimSpace(cfg.LLM.APIKey) != "" {
				llmDetail = fmt.Sprintf("configured (%s)", cfg.LLM.Model)
				llmKind = statusOK
			}
			fmt.Fprintln(stdout, renderStatusLine("LLM", llmKind, llmDetail, colorize))

			transcriber := preflight.CheckTranscriber(cfg.Transcriber.Binary, cfg.Transcriber.ModelPath)
			fmt.Fprintln(stdout, renderStatusLine("Transcriber", boolStatusKind(transcriber.Passed), transcriber.Detail, colorize))

			notifyDetail := "ntfy topic not configured"
			notifyKind := statusInfo
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
				notifyDetail = "ntfy configured"
				notifyKind = statusOK
			}
			fmt.Fprintln(stdout, renderStatusLine("Notifications", notifyKind, notifyDetail, colorize))

			disk := preflight.CheckDiskSpace(cfg.Paths.DataDir)
			fmt.Fprintln(stdout, renderStatusLine("Disk space", boolStatusKind(disk.Passed), disk.Detail, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Knowledge", colorize) {
				fmt.Fprintln(stdout, line)
			}
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				rows, err := buildKnowledgeRows(cmd, st)
				if err != nil {
					return err
				}
				table := renderTable([]string{"Kind", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func buildKnowledgeRows(cmd *cobra.Command, st *store.Store) ([][]string, error) {
	ctx := cmd.Context()
	rows := make([][]string, 0, 6)
	for _, kind := range []store.EntityKind{store.EntityProject, store.EntityCollaborator, store.EntityInterest} {
		entities, err := st.Entities(ctx, kind)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{string(kind), fmt.Sprintf("%d", len(entities))})
	}
	pending, err := st.PendingTodos(ctx)
	if err != nil {
		return nil, err
	}
	rows = append(rows, []string{"pending todos", fmt.Sprintf("%d", len(pending))})
	insights, err := st.LatestInsights(ctx, 1000)
	if err != nil {
		return nil, err
	}
	rows = append(rows, []string{"insights", fmt.Sprintf("%d", len(insights))})
	actions, err := st.RecentActions(ctx, 1000)
	if err != nil {
		return nil, err
	}
	rows = append(rows, []string{"actions", fmt.Sprintf("%d", len(actions))})
	return rows, nil
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext, logLevel string) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{LogLevel: strings.TrimSpace(logLevel)}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
