package internal

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

const (
	tabWidth     = 8
	maxTextWidth = 40
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	kindStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	tokenStyle   = color.New(color.FgGreen, color.Bold)
	spanStyle    = color.New(color.FgBlue)
	valueStyle   = color.New(color.FgMagenta)
)

// FormatTree renders a parse tree, one node per line, indented by depth.
func FormatTree(root *tt.Node) string {
	var builder strings.Builder
	writeNode(&builder, root, 0)
	return builder.String()
}

func writeNode(b *strings.Builder, n *tt.Node, depth int) {
	if n == nil {
		return
	}
	token := n.Token
	if token == "" {
		token = "<root>"
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(tokenStyle.Sprint(token))
	b.WriteString(spanStyle.Sprintf(" [%d:%d]", n.Begin, n.End))
	b.WriteString(" " + quoteText(n.Text))
	if n.Production != nil && !isText(n.Production, n.Text) {
		b.WriteString(" => " + valueStyle.Sprintf("%v", n.Production))
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
}

func isText(v any, text string) bool {
	s, ok := v.(string)
	return ok && s == text
}

// quoteText quotes text on one line, shortened to maxTextWidth runes.
func quoteText(text string) string {
	r := []rune(text)
	if len(r) > maxTextWidth {
		return fmt.Sprintf("%q...", string(r[:maxTextWidth]))
	}
	return fmt.Sprintf("%q", text)
}

// FormatParseFailure renders a failure with the offending source line and
// an arrow under the failing column.
func FormatParseFailure(filename string, source string, failure *tt.Failure) string {
	var result strings.Builder
	result.WriteString(formatFailureHeader(filename, failure))

	lines := strings.Split(source, "\n")
	if failure.Line < 1 || failure.Line > len(lines) {
		result.WriteString(lineStyle.Sprint("  | "))
		result.WriteString(messageStyle.Sprintf("%s\n\n", failure.Message))
		return result.String()
	}

	lineNumberStr := fmt.Sprintf("%d", failure.Line)
	padding := strings.Repeat(" ", len(lineNumberStr)-1)
	result.WriteString(lineStyle.Sprintf("  %s|\n", padding))

	raw := strings.TrimRight(lines[failure.Line-1], "\r")
	line := expandTabs(raw)
	result.WriteString(lineStyle.Sprintf("%d | ", failure.Line))
	result.WriteString(line + "\n")

	visualColumn := calculateVisualColumn(raw, failure.Column)
	result.WriteString(lineStyle.Sprintf("  %s| ", padding))
	result.WriteString(strings.Repeat(" ", visualColumn))
	result.WriteString(messageStyle.Sprintf("^ %s\n\n", failure.Message))

	return result.String()
}

func formatFailureHeader(filename string, failure *tt.Failure) string {
	location := filename
	if location == "" {
		location = "<input>"
	}
	if failure.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", location, failure.Line, failure.Column)
	}
	return errorStyle.Sprint("error: ") + kindStyle.Sprint(failure.Kind) + "\n" +
		lineStyle.Sprint(" --> ") + fileStyle.Sprint(location) + "\n"
}

func expandTabs(line string) string {
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := tabWidth - (column % tabWidth)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			column += spaceCount
		} else {
			expanded.WriteRune(ch)
			column++
		}
	}
	return expanded.String()
}

// calculateVisualColumn returns the display column of the 1-based rune
// column, tabs expanded.
func calculateVisualColumn(line string, column int) int {
	visualColumn := 0
	i := 0
	for _, ch := range line {
		i++
		if i == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}
