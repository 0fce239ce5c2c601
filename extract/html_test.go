package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverpad/solverpad/problem"
)

var cfKey = problem.Key{Platform: problem.PlatformCodeforces, ContestID: "2112", Index: "B"}

const problemPage = `<html>
<head><title>Problem - 2112B - Codeforces</title></head>
<body>
<div class="menu"><a href="/">Home</a><a href="/contests">Contests</a></div>
<div class="problem-statement">
  <div class="header">
    <div class="title">B. Shrinking Array</div>
    <div class="time-limit"><div class="property-title">time limit per test</div>2 seconds</div>
    <div class="memory-limit"><div class="property-title">memory limit per test</div>256 megabytes</div>
  </div>
  <div>
    <p>You are given an array of integers. An array is called beautiful if there
    exists an index where two adjacent elements differ by at most one.</p>
    <p>In one operation you may merge two adjacent elements, replacing them with
    any value between the smaller and the larger of the two.</p>
  </div>
  <div class="input-specification">
    <div class="section-title">Input</div>
    <p>The first line contains one integer t, the number of test cases.</p>
  </div>
  <div class="output-specification">
    <div class="section-title">Output</div>
    <p>For each test case print the minimum number of operations, or -1.</p>
  </div>
  <div class="sample-tests">
    <div class="sample-test">
      <div class="input"><div class="title">Input</div><pre><div class="test-example-line">3</div><div class="test-example-line">2 1 2</div><div class="test-example-line">5</div></pre></div>
      <div class="output"><div class="title">Output</div><pre>1
0</pre></div>
    </div>
  </div>
  <div class="note">
    <div class="section-title">Note</div>
    <p>In the first test case the array is already beautiful.</p>
  </div>
</div>
</body>
</html>`

func TestFromHTMLProblemPage(t *testing.T) {
	rec := FromHTML([]byte(problemPage), cfKey)
	require.NotNil(t, rec)

	assert.Equal(t, "B. Shrinking Array", rec.Title)
	assert.Equal(t, "2 seconds", rec.TimeLimit)
	assert.Equal(t, "256 megabytes", rec.MemoryLimit)
	assert.Equal(t, "https://codeforces.com/contest/2112/problem/B", rec.SourceURL)

	assert.Contains(t, rec.StatementBody, "array is called beautiful")
	assert.Contains(t, rec.StatementBody, "number of test cases")
	assert.Contains(t, rec.StatementBody, "already beautiful")
	// Chrome and sample blocks never leak into the statement.
	assert.NotContains(t, rec.StatementBody, "Contests")
	assert.NotContains(t, rec.StatementBody, "2 1 2")
}

// Newer problem pages express sample line breaks as block-level <div>
// children instead of text newlines. Flattening must preserve one line per
// block child, not merge them.
func TestFromHTMLBlockElementSampleLines(t *testing.T) {
	rec := FromHTML([]byte(problemPage), cfKey)
	require.NotNil(t, rec)
	require.Len(t, rec.Samples, 1)

	input := rec.Samples[0].Input
	lines := strings.Split(input, "\n")
	assert.Len(t, lines, 3, "one line per block child")
	assert.Equal(t, "3", lines[0])
	assert.Equal(t, "2 1 2", lines[1])
	assert.Equal(t, "5", lines[2])

	assert.Equal(t, "1\n0", rec.Samples[0].Output)
}

func TestFromHTMLBrLineBreaks(t *testing.T) {
	page := `<div class="problem-statement">
		<div class="header"><div class="title">A. Echo</div></div>
		<div><p>Some statement text.</p></div>
		<div class="sample-tests">
			<div class="input"><pre>5 3<br>1 2 3</pre></div>
			<div class="output"><pre>6<br></pre></div>
		</div>
	</div>`
	rec := FromHTML([]byte(page), cfKey)
	require.NotNil(t, rec)
	require.Len(t, rec.Samples, 1)
	assert.Equal(t, "5 3\n1 2 3", rec.Samples[0].Input)
	assert.Equal(t, "6", rec.Samples[0].Output)
}

func TestFromHTMLNoContainer(t *testing.T) {
	page := `<html><body>
		<div class="contest-state">Codeforces Round 900 (Div. 3)</div>
		<p>Before the contest 2 days 13 hours</p>
	</body></html>`
	assert.Nil(t, FromHTML([]byte(page), cfKey), "pages without a problem container yield nil")
}

func TestFromHTMLUnevenSamplePairs(t *testing.T) {
	page := `<div class="problem-statement">
		<div class="header"><div class="title">A</div></div>
		<div class="sample-tests">
			<div class="input"><pre>1</pre></div>
			<div class="output"><pre>2</pre></div>
			<div class="input"><pre>3</pre></div>
		</div>
	</div>`
	rec := FromHTML([]byte(page), cfKey)
	require.NotNil(t, rec)
	assert.Len(t, rec.Samples, 1, "unpaired inputs are dropped")
}

func TestCleanTextCollapsesBlankRuns(t *testing.T) {
	in := "first\n\n\n\n\n\nsecond  \nthird\t\n"
	got := cleanText(in)
	assert.Equal(t, "first\n\nsecond\nthird", got)
}
