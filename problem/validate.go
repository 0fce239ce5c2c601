package problem

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinStatementLength is the minimum statement body length (in runes) for a
// record to be accepted. Shorter bodies are almost always extraction misses.
const MinStatementLength = 100

// nonProblemPhrases mark pages that are contest chrome rather than problem
// statements: announcement blurbs, registration banners and countdown pages
// parse cleanly but must never be persisted as a statement.
var nonProblemPhrases = []string{
	"codeforces round",
	"register now",
	"registration completed",
	"contest is running",
	"before the contest",
	"virtual participation",
	"announcement",
	"has been rescheduled",
	"wishes everyone good luck",
}

// ValidationError explains why a fetched record was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid problem record: " + e.Reason
}

// Validate checks that a record looks like a real problem statement.
// Placeholder records are exempt: the terminal strategy must always succeed.
func (r *Record) Validate() error {
	if r.Placeholder {
		return nil
	}
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Reason: "missing title"}
	}
	body := strings.TrimSpace(r.StatementBody)
	if n := utf8.RuneCountInString(body); n < MinStatementLength {
		return &ValidationError{Reason: fmt.Sprintf("statement too short (%d runes, need %d)", n, MinStatementLength)}
	}
	lower := strings.ToLower(body)
	// Only inspect the head of the document: a legitimate statement can
	// mention a round name deep in a note section.
	head := lower
	if len(head) > 600 {
		head = head[:600]
	}
	for _, phrase := range nonProblemPhrases {
		if strings.Contains(head, phrase) {
			return &ValidationError{Reason: "statement matches non-problem phrase " + fmt.Sprintf("%q", phrase)}
		}
	}
	return nil
}
