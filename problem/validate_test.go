package problem

import (
	"strings"
	"testing"
)

func validRecord() *Record {
	return &Record{
		Title:         "A. Theatre Square",
		Platform:      PlatformCodeforces,
		ContestID:     "1",
		Index:         "A",
		StatementBody: strings.Repeat("Theatre Square in the capital city of Berland has a rectangular shape. ", 5),
		SourceURL:     "https://codeforces.com/contest/1/problem/A",
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr string
	}{
		{
			name:   "valid record",
			mutate: func(r *Record) {},
		},
		{
			name:    "missing title",
			mutate:  func(r *Record) { r.Title = "  " },
			wantErr: "missing title",
		},
		{
			name:    "statement too short",
			mutate:  func(r *Record) { r.StatementBody = "n/a" },
			wantErr: "too short",
		},
		{
			name: "announcement page",
			mutate: func(r *Record) {
				r.StatementBody = "Codeforces Round 900 (Div. 3) starts soon. Register now to participate! " +
					strings.Repeat("Good luck to all participants in the upcoming round. ", 3)
			},
			wantErr: "non-problem phrase",
		},
		{
			name: "countdown page",
			mutate: func(r *Record) {
				r.StatementBody = "Before the contest there are 2 days 13 hours left. " +
					strings.Repeat("The problems will be available once the contest begins. ", 3)
			},
			wantErr: "non-problem phrase",
		},
		{
			name: "round name deep in note section is fine",
			mutate: func(r *Record) {
				r.StatementBody = strings.Repeat("You are given an array of n integers. ", 30) +
					"This problem appeared in Codeforces Round 900."
			},
		},
		{
			name: "placeholder exempt from checks",
			mutate: func(r *Record) {
				r.StatementBody = "short"
				r.Placeholder = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(rec)
			err := rec.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestKeyID(t *testing.T) {
	k := Key{Platform: PlatformCodeforces, ContestID: "1794", Index: "C"}
	if got := k.ID(); got != "1794C" {
		t.Errorf("ID() = %q, want %q", got, "1794C")
	}
}

func TestKeyURL(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{
			key:  Key{Platform: PlatformCodeforces, ContestID: "2112", Index: "B"},
			want: "https://codeforces.com/contest/2112/problem/B",
		},
		{
			key:  Key{Platform: PlatformAtCoder, ContestID: "abc321", Index: "A"},
			want: "https://atcoder.jp/contests/abc321/tasks/abc321_a",
		},
		{
			key:  Key{Platform: PlatformCSES, ContestID: "1068", Index: ""},
			want: "https://cses.fi/problemset/task/1068",
		},
	}
	for _, tt := range tests {
		if got := tt.key.URL(); got != tt.want {
			t.Errorf("URL(%v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
