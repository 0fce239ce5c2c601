// Package extract turns one raw remote document (HTML or JSON) into a
// normalized problem record. It is a pure transform: no network access, no
// retries. A nil result means "no recognizable problem in this document" and
// tells the acquisition pipeline to try its next strategy.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/solverpad/solverpad/problem"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// chromeClasses mark page furniture that must never leak into a statement
// body even when it sits inside the problem container.
var chromeClasses = map[string]bool{
	"menu":              true,
	"menu-box":          true,
	"sidebar":           true,
	"nav":               true,
	"navbar":            true,
	"breadcrumb":        true,
	"footer":            true,
	"roundbox":          true,
	"second-level-menu": true,
}

// statement containers per platform, in the order they are probed.
var containerSelectors = map[problem.Platform][]string{
	problem.PlatformCodeforces: {"div.problem-statement"},
	problem.PlatformAtCoder:    {"#task-statement", "div.problem-statement"},
	problem.PlatformCSES:       {"div.content div.md", "div.problem-statement"},
}

func newMarkdownConverter() *md.Converter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	return conv
}

// FromHTML parses a problem page into a record. It returns nil when the
// document contains no recognizable problem container; callers treat that as
// "advance to the next strategy", never as an exception.
func FromHTML(doc []byte, key problem.Key) *problem.Record {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil
	}

	var container *goquery.Selection
	for _, sel := range containerSelectors[key.Platform] {
		if s := root.Find(sel).First(); s.Length() > 0 {
			container = s
			break
		}
	}
	if container == nil {
		return nil
	}

	rec := &problem.Record{
		Platform:  key.Platform,
		ContestID: key.ContestID,
		Index:     key.Index,
		SourceURL: key.URL(),
	}

	rec.Title = strings.TrimSpace(container.Find("div.title").First().Text())
	if rec.Title == "" {
		rec.Title = strings.TrimSpace(root.Find("title").First().Text())
	}
	rec.TimeLimit = limitText(container.Find("div.time-limit").First())
	rec.MemoryLimit = limitText(container.Find("div.memory-limit").First())

	rec.StatementBody = statementBody(container)
	rec.Samples = sampleTests(container)
	return rec
}

// limitText extracts "2 seconds" from a Codeforces limit division, whose
// text is the label ("time limit per test") immediately followed by the value.
func limitText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	label := sel.Find("div.property-title").First().Text()
	value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sel.Text()), strings.TrimSpace(label)))
	return value
}

// statementBody converts the statement sections to markdown, skipping the
// header (title and limits live there), the sample block (extracted
// separately) and anything marked as page chrome. Sections are joined with a
// blank-line separator.
func statementBody(container *goquery.Selection) string {
	conv := newMarkdownConverter()

	var sections []string
	container.Children().Each(func(_ int, sec *goquery.Selection) {
		class, _ := sec.Attr("class")
		if skipSection(class) {
			return
		}
		// Drop scripts and chrome nested inside the section before
		// flattening to markdown.
		sec = sec.Clone()
		sec.Find("script, style, noscript").Remove()
		for name := range chromeClasses {
			sec.Find("." + name).Remove()
		}

		raw, err := goquery.OuterHtml(sec)
		if err != nil {
			return
		}
		text, err := conv.ConvertString(raw)
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text != "" {
			sections = append(sections, text)
		}
	})

	return cleanText(strings.Join(sections, "\n\n"))
}

func skipSection(class string) bool {
	for _, c := range strings.Fields(class) {
		c = strings.ToLower(c)
		if c == "header" || c == "sample-tests" || c == "sample-test" {
			return true
		}
		if chromeClasses[c] {
			return true
		}
		if strings.Contains(c, "announcement") {
			return true
		}
	}
	return false
}

// sampleTests pairs up the input/output pre blocks in document order.
func sampleTests(container *goquery.Selection) []problem.Sample {
	var inputs, outputs []string
	container.Find("div.input pre").Each(func(_ int, pre *goquery.Selection) {
		inputs = append(inputs, preText(pre))
	})
	container.Find("div.output pre").Each(func(_ int, pre *goquery.Selection) {
		outputs = append(outputs, preText(pre))
	})

	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	samples := make([]problem.Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, problem.Sample{Input: inputs[i], Output: outputs[i]})
	}
	return samples
}

// preText flattens a <pre> element to text, converting block-level children
// to line breaks first. Newer Codeforces pages wrap every sample line in its
// own <div>; naive text extraction merges those lines into one, which
// corrupts sample inputs. Explicit <br> elements become newlines too.
func preText(pre *goquery.Selection) string {
	if len(pre.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	flattenPre(pre.Nodes[0], &sb)
	return trimLines(sb.String())
}

func flattenPre(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			switch c.Data {
			case "br":
				sb.WriteString("\n")
			case "div", "p":
				flattenPre(c, sb)
				ensureNewline(sb)
			default:
				flattenPre(c, sb)
			}
		}
	}
}

func ensureNewline(sb *strings.Builder) {
	if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
		sb.WriteString("\n")
	}
}

// trimLines strips trailing whitespace from every line and outer blank space
// while preserving interior line structure.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// cleanText collapses runs of three or more blank lines to exactly one and
// strips trailing whitespace per line.
func cleanText(s string) string {
	s = excessiveLinesRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
