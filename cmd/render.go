package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnoswap-labs/rxparse/regexpr"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the regular expression compiled from the grammar and its capture groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		return runRender(engine.Parser().Pattern(), cmd.OutOrStdout())
	},
}

func runRender(pattern *regexpr.Pattern, out io.Writer) error {
	fmt.Fprintf(out, "%s\n\n", pattern.Regex)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tTOKEN\tRULES")
	for _, name := range pattern.Names {
		tok := pattern.Tokens[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, tok.ID, describeRules(tok.Rules))
	}
	return w.Flush()
}

func describeRules(rules []*regexpr.Rule) string {
	if len(rules) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		desc := ruleKind(r)
		if r.Operands != regexpr.OperandNone {
			desc = fmt.Sprintf("%s(%d)", desc, r.Priority)
		}
		if r.Select != nil {
			desc += "?"
		}
		if r.Deferred {
			desc += "*"
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, " ")
}

func ruleKind(r *regexpr.Rule) string {
	switch {
	case r.Delimiter == regexpr.DelimiterLeft:
		return "left"
	case r.Delimiter == regexpr.DelimiterRight:
		return "right"
	case r.Operands == regexpr.OperandLeft|regexpr.OperandRight:
		return "infix"
	case r.Operands == regexpr.OperandRight:
		return "prefix"
	case r.Operands == regexpr.OperandLeft:
		return "postfix"
	default:
		return "plain"
	}
}
