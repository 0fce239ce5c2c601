package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/solverpad/solverpad/extract"
	"github.com/solverpad/solverpad/problem"
)

// CLIStrategy shells out to an external parser tool ("cf parse") for sample
// tests, which are cleaner than scraped ones, and fetches the problem page
// once for the statement body. When the tool is not installed the strategy
// fails fast and the pipeline moves on.
type CLIStrategy struct {
	command string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	urlFor  func(problem.Key) string
}

// CLIOption configures a CLIStrategy.
type CLIOption func(*CLIStrategy)

// WithCLICommand overrides the external tool name.
func WithCLICommand(name string) CLIOption {
	return func(s *CLIStrategy) { s.command = name }
}

// WithCLIPageURL overrides statement page URL construction.
func WithCLIPageURL(f func(problem.Key) string) CLIOption {
	return func(s *CLIStrategy) { s.urlFor = f }
}

// NewCLIStrategy creates the external-tool strategy.
func NewCLIStrategy(timeout time.Duration, logger *slog.Logger, opts ...CLIOption) *CLIStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CLIStrategy{
		command: "cf",
		client:  newHTTPClient(timeout),
		timeout: timeout,
		logger:  logger,
		urlFor:  func(k problem.Key) string { return k.URL() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CLIStrategy) Name() string { return "cli" }

func (s *CLIStrategy) Timeout() time.Duration { return s.timeout }

// Acquire runs the tool in a scratch directory, collects the sample files it
// drops, and combines them with a scraped statement body.
func (s *CLIStrategy) Acquire(ctx context.Context, key problem.Key) (*problem.Record, error) {
	if key.Platform != problem.PlatformCodeforces {
		return nil, nil
	}
	if _, err := exec.LookPath(s.command); err != nil {
		return nil, fmt.Errorf("%s tool not installed", s.command)
	}

	workdir, err := os.MkdirTemp("", "solverpad-cli-*")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(workdir)

	cmd := exec.CommandContext(ctx, s.command, "parse", key.ContestID, key.Index)
	cmd.Dir = workdir
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s parse: %w: %s", s.command, err, firstLine(out))
	}

	samples, err := collectSamples(workdir)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s parse produced no sample files", s.command)
	}

	// The tool only yields samples; the statement still comes from the page.
	doc, err := fetchDocument(ctx, s.client, s.urlFor(key))
	if err != nil {
		return nil, fmt.Errorf("fetch statement page: %w", err)
	}
	rec := extract.FromHTML(doc, key)
	if rec == nil {
		return nil, nil
	}
	rec.Samples = samples
	return rec, nil
}

// collectSamples pairs the in/ans files the tool writes, wherever in the
// scratch tree it chose to put them.
func collectSamples(root string) ([]problem.Sample, error) {
	inputs, err := doublestar.FilepathGlob(filepath.Join(root, "**", "in*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob sample inputs: %w", err)
	}
	answers, err := doublestar.FilepathGlob(filepath.Join(root, "**", "ans*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob sample answers: %w", err)
	}
	sort.Strings(inputs)
	sort.Strings(answers)

	n := len(inputs)
	if len(answers) < n {
		n = len(answers)
	}
	samples := make([]problem.Sample, 0, n)
	for i := 0; i < n; i++ {
		in, err := os.ReadFile(inputs[i])
		if err != nil {
			continue
		}
		ans, err := os.ReadFile(answers[i])
		if err != nil {
			continue
		}
		samples = append(samples, problem.Sample{
			Input:  strings.TrimRight(string(in), "\n") + "\n",
			Output: strings.TrimRight(string(ans), "\n") + "\n",
		})
	}
	return samples, nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
