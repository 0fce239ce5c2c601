package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solverpad/solverpad/problem"
)

// apiProblem is the problem object shape returned by the Codeforces API
// (contest.standings and problemset.problems). Mirror APIs that embed full
// statements use the same field names plus statement and sampleTests.
type apiProblem struct {
	ContestID json.Number `json:"contestId"`
	Index     string      `json:"index"`
	Name      string      `json:"name"`
	Rating    int         `json:"rating"`
	Tags      []string    `json:"tags"`

	TimeLimit   string `json:"timeLimit"`
	MemoryLimit string `json:"memoryLimit"`
	Statement   string `json:"statement"`
	SampleTests []struct {
		Input  string `json:"input"`
		Output string `json:"output"`
	} `json:"sampleTests"`
}

// FromAPI maps a problem JSON payload to a record. Fields are mapped
// directly; there is no section-splitting step. The official Codeforces API
// carries no statement text, so records built from it fail validation and
// push the pipeline to the next strategy; payloads that do embed a statement
// produce a complete record.
func FromAPI(payload []byte, key problem.Key) *problem.Record {
	var p apiProblem
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil
	}
	if p.Name == "" && p.Statement == "" {
		return nil
	}

	title := p.Name
	if p.Index != "" && title != "" {
		title = p.Index + ". " + title
	}

	rec := &problem.Record{
		Title:         title,
		Platform:      key.Platform,
		ContestID:     key.ContestID,
		Index:         key.Index,
		StatementBody: cleanText(p.Statement),
		TimeLimit:     p.TimeLimit,
		MemoryLimit:   p.MemoryLimit,
		SourceURL:     key.URL(),
	}
	if rec.StatementBody != "" && len(p.Tags) > 0 {
		rec.StatementBody += fmt.Sprintf("\n\ntags: %s", strings.Join(p.Tags, ", "))
	}
	for _, s := range p.SampleTests {
		rec.Samples = append(rec.Samples, problem.Sample{Input: s.Input, Output: s.Output})
	}
	return rec
}
