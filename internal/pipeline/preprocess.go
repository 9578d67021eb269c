package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders are Private Use Area runes. Goldmark keeps them as
// ordinary text, so ==marked== spans survive parsing without raw HTML and
// become <mark> tags once the body is serialized.
const (
	MarkOpenPlaceholder  = "\uE000"
	MarkClosePlaceholder = "\uE001"
)

var (
	lineEndings       = regexp.MustCompile(`\r\n?`)
	markSpan          = regexp.MustCompile(`==([^=\n]+?)==`)
	codeFence         = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")
	indentedCodeBlock = regexp.MustCompile(`^(    |\t)`)
)

// Preprocessor normalizes markdown text before it reaches the event source.
type Preprocessor interface {
	Preprocess(ctx context.Context, markdown string) string
}

// TextPreprocessor normalizes line endings, collapses runs of blank lines and
// turns ==text== into highlight placeholders. Fenced code, indented code and
// inline code spans are left untouched.
type TextPreprocessor struct{}

// Preprocess returns markdown unchanged if ctx is already done.
func (TextPreprocessor) Preprocess(ctx context.Context, markdown string) string {
	if ctx.Err() != nil {
		return markdown
	}
	markdown = lineEndings.ReplaceAllString(markdown, "\n")

	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))

	var fence string // closing marker prefix of the open fenced block
	for i, line := range lines {
		if fence != "" {
			out = append(out, line)
			if isFenceClose(line, fence) {
				fence = ""
			}
			continue
		}
		if m := codeFence.FindStringSubmatch(line); m != nil {
			// Backtick fences cannot carry backticks in their info string.
			if m[1][0] != '`' || !strings.Contains(m[2], "`") {
				fence = m[1]
				out = append(out, line)
				continue
			}
		}

		if strings.TrimSpace(line) == "" {
			// Keep one blank line of a run, unless the run sits inside an
			// indented code block.
			if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" && !blankRunInIndentedCode(lines, out, i) {
				continue
			}
			out = append(out, line)
			continue
		}
		if indentedCodeBlock.MatchString(line) {
			out = append(out, line)
			continue
		}
		out = append(out, markOutsideCodeSpans(line))
	}
	return strings.Join(out, "\n")
}

// isFenceClose reports whether line closes a block opened with fence: the
// same character, at least as long, and nothing but spaces after it.
func isFenceClose(line, fence string) bool {
	m := codeFence.FindStringSubmatch(line)
	if m == nil || m[1][0] != fence[0] || len(m[1]) < len(fence) {
		return false
	}
	return strings.TrimSpace(m[2]) == ""
}

// blankRunInIndentedCode reports whether the blank line at lines[i] lies
// between two indented code lines.
func blankRunInIndentedCode(lines, out []string, i int) bool {
	prev := ""
	for j := len(out) - 1; j >= 0; j-- {
		if strings.TrimSpace(out[j]) != "" {
			prev = out[j]
			break
		}
	}
	if !indentedCodeBlock.MatchString(prev) {
		return false
	}
	for _, next := range lines[i+1:] {
		if strings.TrimSpace(next) != "" {
			return indentedCodeBlock.MatchString(next)
		}
	}
	return false
}

// markOutsideCodeSpans replaces ==text== with placeholders, skipping
// backtick code spans. A backtick run with no closing run of the same
// length is literal text.
func markOutsideCodeSpans(line string) string {
	if !strings.Contains(line, "==") {
		return line
	}
	if !strings.Contains(line, "`") {
		return markSpan.ReplaceAllString(line, MarkOpenPlaceholder+"$1"+MarkClosePlaceholder)
	}

	var b strings.Builder
	text := 0 // start of the pending non-code text
	for i := 0; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		n := backtickRun(line, i)
		end := closingRun(line, i+n, n)
		if end < 0 {
			i += n
			continue
		}
		b.WriteString(markSpan.ReplaceAllString(line[text:i], MarkOpenPlaceholder+"$1"+MarkClosePlaceholder))
		b.WriteString(line[i : end+n])
		i = end + n
		text = i
	}
	b.WriteString(markSpan.ReplaceAllString(line[text:], MarkOpenPlaceholder+"$1"+MarkClosePlaceholder))
	return b.String()
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// closingRun returns the index of the next backtick run of exactly n at or
// after from, or -1.
func closingRun(s string, from, n int) int {
	for i := from; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		m := backtickRun(s, i)
		if m == n {
			return i
		}
		i += m
	}
	return -1
}

// IsBlank reports whether markdown has no visible content.
func IsBlank(markdown string) bool {
	return strings.TrimSpace(markdown) == ""
}

// ExpandMarks replaces highlight placeholders in serialized markup with
// <mark> tags.
func ExpandMarks(markup string) string {
	if !strings.Contains(markup, MarkOpenPlaceholder) {
		return markup
	}
	return strings.NewReplacer(
		MarkOpenPlaceholder, "<mark>",
		MarkClosePlaceholder, "</mark>",
	).Replace(markup)
}
