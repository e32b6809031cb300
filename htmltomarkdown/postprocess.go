package htmltomarkdown

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	excessNewlines   = regexp.MustCompile(`\n{4,}`)
	emptyListItem    = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]*$`)
	headingLine      = regexp.MustCompile(`^(#{1,6})[ \t]*(.+?)[ \t]*$`)
	trailingSpace    = regexp.MustCompile(`(?m)[ \t]+$`)
	afterFence       = regexp.MustCompile("```\n+")
	beforeFence      = regexp.MustCompile("\n+```")
	excessAsterisks  = regexp.MustCompile(`\*{3,}`)
	excessUnderscore = regexp.MustCompile(`_{3,}`)
)

// PostProcess normalizes converter output in order: newline runs are capped
// at two blank lines, bare bullet lines are emptied, heading spacing is
// normalized outside code fences, trailing whitespace is stripped, newline
// runs on either side of a fence marker become one newline and emphasis runs
// are collapsed.
func PostProcess(md string) string {
	md = excessNewlines.ReplaceAllString(md, "\n\n\n")
	md = emptyListItem.ReplaceAllString(md, "")
	md = normalizeHeadings(md)
	md = trailingSpace.ReplaceAllString(md, "")
	md = afterFence.ReplaceAllString(md, fence+"\n")
	md = beforeFence.ReplaceAllString(md, "\n"+fence)
	md = excessAsterisks.ReplaceAllString(md, "**")
	md = excessUnderscore.ReplaceAllString(md, "__")
	return strings.TrimSpace(md)
}

// normalizeHeadings puts one space after a heading's hashes. Lines inside
// fenced code are left alone so "#include" survives.
func normalizeHeadings(md string) string {
	lines := strings.Split(md, "\n")
	inFence := false

	for i, line := range lines {
		if strings.HasPrefix(line, fence) {
			inFence = !inFence
			continue
		}
		if !inFence {
			lines[i] = headingLine.ReplaceAllString(line, "$1 $2")
		}
	}

	return strings.Join(lines, "\n")
}
