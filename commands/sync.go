package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/solverpad/solverpad/problem"
)

func newSyncCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the solved-problem cache and rating history",
		Long: `Sync pages through the configured handle's full submission history,
rebuilds the cached solved set, and stores the account's rating history
beside it. The solved set is served from cache while fresh; --force always
refreshes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSync(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Refresh even when the cache is fresh")
	return cmd
}

func (a *App) runSync(ctx context.Context, force bool) error {
	if a.cfg.Judge.Handle == "" {
		return fmt.Errorf("judge.handle is not configured")
	}
	if a.cfg.Platform() != problem.PlatformCodeforces {
		return fmt.Errorf("sync requires the codeforces platform")
	}

	cache := a.newSolvedCache()
	maxAge := a.cfg.Judge.SolvedTTL
	if force {
		maxAge = 0
	}
	set, err := cache.Get(ctx, maxAge)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d problems solved (%d submissions scanned, refreshed %s ago)\n",
		set.Handle, set.Len(), set.TotalSubmissionsScanned, set.Age().Round(time.Second))

	if err := a.syncRating(ctx); err != nil {
		// Rating history is supplementary; a failure does not undo the
		// solved-set refresh.
		a.logger.Warn("sync rating history", "error", err)
	}
	return nil
}

func (a *App) syncRating(ctx context.Context) error {
	changes, err := a.newJudgeClient().UserRating(ctx, a.cfg.Judge.Handle)
	if err != nil {
		return err
	}

	path := filepath.Join(a.stateDir(), "rating.json")
	data, err := json.MarshalIndent(changes, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.stateDir(), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	if len(changes) > 0 {
		last := changes[len(changes)-1]
		fmt.Printf("rating: %d (last change %+d in %s)\n",
			last.NewRating, last.NewRating-last.OldRating, last.ContestName)
	} else {
		fmt.Println("rating: unrated")
	}
	return nil
}
