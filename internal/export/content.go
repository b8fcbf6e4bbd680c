package export

import (
	"html"
	"strings"
)

// ContentToHTML converts stored document text into printable HTML.
// Blank lines separate paragraphs, a leading run of # marks a heading
// (up to three levels), and single newlines inside a paragraph become
// line breaks. Everything else is escaped.
func ContentToHTML(content string) string {
	text := strings.ReplaceAll(content, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var b strings.Builder
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if level, rest := headingLevel(block); level > 0 {
			tag := [...]string{"", "h1", "h2", "h3"}[level]
			b.WriteString("<" + tag + ">" + html.EscapeString(rest) + "</" + tag + ">\n")
			continue
		}

		lines := strings.Split(block, "\n")
		escaped := make([]string, 0, len(lines))
		for _, line := range lines {
			escaped = append(escaped, html.EscapeString(line))
		}
		b.WriteString("<p>" + strings.Join(escaped, "<br>") + "</p>\n")
	}
	return strings.TrimSpace(b.String())
}

// headingLevel returns the heading depth (1-3) for a single-line block
// starting with #, or 0 when the block is a regular paragraph.
func headingLevel(block string) (int, string) {
	if strings.Contains(block, "\n") {
		return 0, ""
	}
	level := 0
	for level < len(block) && block[level] == '#' && level < 3 {
		level++
	}
	if level == 0 || level >= len(block) || block[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(block[level:])
}
