package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/solverpad/solverpad/activity"
	"github.com/solverpad/solverpad/problem"
)

func newPullCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <contestId> [index]",
		Short: "Fetch problem statements and samples into the workspace",
		Long: `Pull acquires problem statements and sample tests into
{workspace}/{contestId}/{index}/. With an index it pulls one problem; without,
it pulls the whole contest (Codeforces only). Problems the configured handle
has already solved are marked in the output.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contestID := args[0]
			if len(args) == 2 {
				return app.pullProblem(cmd.Context(), contestID, args[1])
			}
			return app.pullContest(cmd.Context(), contestID)
		},
	}
}

func (a *App) pullProblem(ctx context.Context, contestID, index string) error {
	solved := a.loadSolvedSet()
	return a.pullOne(ctx, a.newPipeline(), problem.Key{
		Platform:  a.cfg.Platform(),
		ContestID: contestID,
		Index:     index,
	}, solved)
}

func (a *App) pullContest(ctx context.Context, contestID string) error {
	if a.cfg.Platform() != problem.PlatformCodeforces {
		return fmt.Errorf("whole-contest pull requires the codeforces platform; pass an index")
	}

	problems, err := a.newJudgeClient().ContestProblems(ctx, contestID)
	if err != nil {
		return fmt.Errorf("list contest %s: %w", contestID, err)
	}
	if len(problems) == 0 {
		return fmt.Errorf("contest %s has no problems", contestID)
	}

	solved := a.loadSolvedSet()
	pipeline := a.newPipeline()
	for _, p := range problems {
		key := problem.Key{
			Platform:  problem.PlatformCodeforces,
			ContestID: strconv.Itoa(p.ContestID),
			Index:     p.Index,
		}
		if err := a.pullOne(ctx, pipeline, key, solved); err != nil {
			return err
		}
	}
	return nil
}

// acquirer is satisfied by *fetch.Pipeline.
type acquirer interface {
	Acquire(ctx context.Context, key problem.Key, dir string) (*problem.Record, error)
}

func (a *App) pullOne(ctx context.Context, pipeline acquirer, key problem.Key, solved *activity.SolvedSet) error {
	start := time.Now()
	rec, err := pipeline.Acquire(ctx, key, a.problemDir(key))
	if err != nil {
		return fmt.Errorf("pull %s: %w", key.String(), err)
	}

	status := "ok"
	if rec.Placeholder {
		status = "placeholder"
	}
	mark := ""
	if solved != nil && solved.Contains(key.ID()) {
		mark = "  [solved]"
	}
	fmt.Printf("%-8s %-40s %s (%d samples, %s)%s\n",
		key.ID(), truncate(rec.Title, 40), status, len(rec.Samples),
		time.Since(start).Round(time.Millisecond), mark)
	return nil
}

// loadSolvedSet consults the cached solved set read-only; pull never forces
// a network refresh just to annotate output. Run `sync` to refresh.
func (a *App) loadSolvedSet() *activity.SolvedSet {
	if a.cfg.Judge.Handle == "" || a.cfg.Platform() != problem.PlatformCodeforces {
		return nil
	}
	return a.newSolvedCache().Cached()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
