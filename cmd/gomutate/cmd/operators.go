package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomutate/internal/catalog"
	"github.com/dbsmedya/gomutate/internal/schema"
)

var (
	operatorsType  string
	operatorsClass string
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List the mutation operator catalog",
	Long: `Operators displays every mutation operator the engines draw from, with
the schema types it applies to and the vulnerability class it probes.

Structural operators change document shape rather than scalar content and
are the only ones applied to sample locations the schema does not describe.

Example:
  gomutate operators
  gomutate operators --type string --class injection`,
	RunE: runOperators,
}

func init() {
	operatorsCmd.Flags().StringVarP(&operatorsType, "type", "t", "",
		"Only show operators applicable to this schema type")
	operatorsCmd.Flags().StringVar(&operatorsClass, "class", "",
		"Only show operators probing this vulnerability class")

	rootCmd.AddCommand(operatorsCmd)
}

func runOperators(cmd *cobra.Command, args []string) error {
	reg := catalog.NewRegistry()

	ops := reg.All()
	if operatorsType != "" {
		t := schema.Type(operatorsType)
		if !t.Valid() {
			return fmt.Errorf("unknown schema type %q", operatorsType)
		}
		ops = reg.ForType(t)
	}
	if operatorsClass != "" {
		want := catalog.Class(operatorsClass)
		if !knownClass(reg, want) {
			return fmt.Errorf("unknown operator class %q", operatorsClass)
		}
		var filtered []*catalog.Operator
		for _, op := range ops {
			if op.Class == want {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}

	if len(ops) == 0 {
		cmd.Printf("No operators match type=%q class=%q\n", operatorsType, operatorsClass)
		return nil
	}

	// Column widths come from the plain strings; the class cell is padded
	// before coloring so ANSI codes do not skew alignment.
	nameW := runewidth.StringWidth("NAME")
	classW := runewidth.StringWidth("CLASS")
	for _, op := range ops {
		if w := runewidth.StringWidth(op.Name); w > nameW {
			nameW = w
		}
		if w := runewidth.StringWidth(string(op.Class)); w > classW {
			classW = w
		}
	}

	cmd.Printf("Operator catalog: %d operator(s)\n\n", len(ops))
	cmd.Printf("  %s  %s  %s  %s\n",
		runewidth.FillRight("NAME", nameW),
		runewidth.FillRight("CLASS", classW),
		"STRUCTURAL",
		"TYPES")
	for _, op := range ops {
		structural := "no"
		if op.Structural {
			structural = "yes"
		}
		cmd.Printf("  %s  %s  %s  %s\n",
			runewidth.FillRight(op.Name, nameW),
			classColor(op.Class).Render(runewidth.FillRight(string(op.Class), classW)),
			runewidth.FillRight(structural, runewidth.StringWidth("STRUCTURAL")),
			typeList(op))
	}

	// The corpus only backs StringInjection, so filtered listings skip it.
	if operatorsType == "" && operatorsClass == "" {
		printPayloadSummary(cmd)
	}

	return nil
}

// knownClass reports whether any registered operator carries the class.
func knownClass(reg *catalog.Registry, c catalog.Class) bool {
	for _, op := range reg.All() {
		if op.Class == c {
			return true
		}
	}
	return false
}

// typeList renders an operator's applicability set, collapsing the full set
// to "any".
func typeList(op *catalog.Operator) string {
	if len(op.Types) == len(schema.Types) {
		return "any"
	}
	names := make([]string, len(op.Types))
	for i, t := range op.Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// classColor maps vulnerability classes to terminal colors, roughly by how
// alarming a finding of that class tends to be.
func classColor(c catalog.Class) color.Color {
	switch c {
	case catalog.ClassInjection:
		return color.Red
	case catalog.ClassOverflow, catalog.ClassResource:
		return color.Magenta
	case catalog.ClassBoundary:
		return color.Yellow
	case catalog.ClassTypeConfusion, catalog.ClassNullHandling, catalog.ClassStructure:
		return color.Cyan
	case catalog.ClassEncoding:
		return color.Blue
	default:
		return color.Green
	}
}

// printPayloadSummary lists the embedded injection corpus per category with
// one example payload each. Examples are width-truncated, not byte-sliced,
// since several payloads carry multi-column or zero-width runes.
func printPayloadSummary(cmd *cobra.Command) {
	payloads := catalog.InjectionPayloads()
	counts := catalog.PayloadCategories()

	categories := make([]string, 0, len(counts))
	for name := range counts {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	catW := runewidth.StringWidth("CATEGORY")
	for _, name := range categories {
		if w := runewidth.StringWidth(name); w > catW {
			catW = w
		}
	}

	cmd.Printf("\nStringInjection corpus: %d payload(s) in %d categories\n\n",
		len(payloads), len(counts))
	cmd.Printf("  %s  COUNT  EXAMPLE\n", runewidth.FillRight("CATEGORY", catW))
	for _, name := range categories {
		example := ""
		for _, p := range payloads {
			if p.Category == name {
				example = p.Text
				break
			}
		}
		cmd.Printf("  %s  %5d  %s\n",
			runewidth.FillRight(name, catW),
			counts[name],
			runewidth.Truncate(example, 40, "..."))
	}
}
