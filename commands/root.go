// Package commands implements the solverpad CLI surface: the thin host
// around the acquisition, session, dispatch and activity subsystems.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solverpad/solverpad/activity"
	"github.com/solverpad/solverpad/chat"
	"github.com/solverpad/solverpad/config"
	"github.com/solverpad/solverpad/fetch"
	"github.com/solverpad/solverpad/llm"
	"github.com/solverpad/solverpad/problem"
	"github.com/solverpad/solverpad/session"
)

// stateDirName holds solverpad's per-workspace state (session table,
// solved-set cache, rating history).
const stateDirName = ".solverpad"

// App carries the loaded configuration and lazily-built subsystems shared
// by all subcommands.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the solverpad command tree.
func NewRootCmd(version string) *cobra.Command {
	app := &App{}
	var logLevel string

	cmd := &cobra.Command{
		Use:   "solverpad",
		Short: "Competitive programming workspace companion",
		Long: `Solverpad pulls problem statements and sample tests into a local
workspace, tracks which problems the configured account has already solved,
and runs AI chat sessions tied to solution files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			switch strings.ToLower(logLevel) {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			}
			app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(app.logger)

			cfg, err := config.NewLoader(app.logger).Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPullCmd(app),
		newSyncCmd(app),
		newChatCmd(app),
		newSessionsCmd(app),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("solverpad version %s\n", version)
			},
		},
	)
	return cmd
}

func (a *App) stateDir() string {
	return filepath.Join(a.cfg.Workspace.Root, stateDirName)
}

func (a *App) problemDir(key problem.Key) string {
	return filepath.Join(a.cfg.Workspace.Root, key.ContestID, key.Index)
}

// newPipeline assembles the acquisition strategy chain for the configured
// platform: native API, external CLI tool, HTML scrape, with the terminal
// placeholder appended by the pipeline itself.
func (a *App) newPipeline() *fetch.Pipeline {
	timeout := a.cfg.Fetch.Timeout

	var strategies []fetch.Strategy
	if a.cfg.Platform() == problem.PlatformCodeforces {
		strategies = append(strategies, fetch.NewAPIStrategy(timeout, ""))
		if a.cfg.Fetch.CLITool != "" {
			strategies = append(strategies,
				fetch.NewCLIStrategy(timeout, a.logger, fetch.WithCLICommand(a.cfg.Fetch.CLITool)))
		}
	}
	strategies = append(strategies, fetch.NewScrapeStrategy(timeout, a.logger))

	return fetch.NewPipeline(problem.NewStore(), a.logger, strategies...)
}

func (a *App) newJudgeClient() *activity.Client {
	key, secret := a.cfg.JudgeCredentials()
	return activity.NewClient("", key, secret, a.cfg.Fetch.Timeout)
}

func (a *App) newSolvedCache() *activity.Cache {
	return activity.NewCache(a.newJudgeClient(), a.cfg.Judge.Handle,
		filepath.Join(a.stateDir(), "solved.json"), a.logger)
}

func (a *App) sessionStore() (*session.Store, error) {
	return session.NewStore(filepath.Join(a.stateDir(), "sessions.json"), a.logger)
}

func (a *App) newChatService(sessions *session.Store) *chat.Service {
	return chat.NewService(sessions, problem.NewStore(), a.newPipeline(),
		llm.NewClient(llm.WithLogger(a.logger)), chat.Settings{
			Provider:      a.cfg.AI.Provider,
			Model:         a.cfg.AI.Model,
			BaseURL:       a.cfg.AI.BaseURL,
			Temperature:   a.cfg.TemperaturePtr(),
			MaxTokens:     a.cfg.AI.MaxTokens,
			Platform:      a.cfg.Platform(),
			WorkspaceRoot: a.cfg.Workspace.Root,
		}, a.logger)
}
