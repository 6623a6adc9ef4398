package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomutate/internal/catalog"
	"github.com/dbsmedya/gomutate/internal/config"
	"github.com/dbsmedya/gomutate/internal/loader"
	"github.com/dbsmedya/gomutate/internal/mutator"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var (
	planSchema string
	planSample string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a fuzz run would target",
	Long: `Plan analyzes a schema, and optionally a sample document, and displays
what a fuzz run over them would do without producing any payloads.

The plan shows:
  - Visual schema tree with per-node constraints
  - Mutable sample locations with their bound types and selection weights
  - Applicable operator counts per location
  - Effective run configuration

Example:
  gomutate plan --schema api.schema.json --sample request.json`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planSchema, "schema", "s", "",
		"Path to the JSON Schema file")
	planCmd.Flags().StringVarP(&planSample, "sample", "d", "",
		"Path to the sample document file (optional)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat)

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema = planSchema
	}
	if flags.Changed("sample") {
		cfg.Sample = planSample
	}

	if cfg.Schema == "" {
		return fmt.Errorf("no schema given (use --schema or the config file)")
	}

	node, err := loader.LoadSchema(cfg.Schema)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	// Display visual tree with the summary column
	printSchemaTree(node, cfg)
	fmt.Fprintln(outputWriter)

	printHeader("Fuzz Plan: %s", cfg.Schema)

	// Schema overview
	fmt.Fprintln(outputWriter)
	printSection("Schema Overview")
	fmt.Fprintf(outputWriter, "  Root Type:     %s\n", node.Type)
	fmt.Fprintf(outputWriter, "  Locations:     %d\n", countSchemaNodes(node))
	fmt.Fprintf(outputWriter, "  Max Depth:     %d level(s)\n", schemaDepth(node))
	fmt.Fprintf(outputWriter, "  Required Keys: %d\n", countRequired(node))

	// Mutation target section, only when a sample is given
	if cfg.Sample != "" {
		doc, err := loader.LoadSample(cfg.Sample)
		if err != nil {
			return fmt.Errorf("failed to load sample: %w", err)
		}

		reg := catalog.NewRegistry()
		sample := mutator.Bind(node, doc)
		targets := sample.Targets()

		fmt.Fprintln(outputWriter)
		printSection("Mutation Targets")
		for i, t := range targets {
			printTargetItem(i+1, t, reg)
		}

		report := node.Validate(doc)
		if !report.Conformant() {
			fmt.Fprintf(outputWriter,
				"\n  Note: sample violates the schema at %d location(s); locations the schema\n"+
					"  does not describe receive structural operators only\n",
				len(report.Violations))
		}
	}

	// Configuration section
	fmt.Fprintln(outputWriter)
	printSection("Run Configuration")
	if cfg.Run.Iterations > 0 {
		fmt.Fprintf(outputWriter, "  Iterations:            %d\n", cfg.Run.Iterations)
	} else {
		fmt.Fprintf(outputWriter, "  Iterations:            unbounded (until interrupted)\n")
	}
	if seed, ok := cfg.Run.SeedValue(); ok {
		fmt.Fprintf(outputWriter, "  Seed:                  %d (configured)\n", seed)
	} else {
		fmt.Fprintf(outputWriter, "  Seed:                  derived from clock at run time\n")
	}
	fmt.Fprintf(outputWriter, "  Generation Weight:     %.2f\n", cfg.Run.GenerationWeight)
	fmt.Fprintf(outputWriter, "  Violation Probability: %.2f\n", cfg.Run.ViolationProbability)
	fmt.Fprintf(outputWriter, "  Workers:               %d\n", cfg.Run.Workers)
	if cfg.Output.Path != "" && cfg.Output.Path != "-" {
		fmt.Fprintf(outputWriter, "  Output:                %s\n", cfg.Output.Path)
	} else {
		fmt.Fprintf(outputWriter, "  Output:                stdout\n")
	}

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := visualWidth(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}

// printTargetItem prints one mutable location in the target list
func printTargetItem(num int, t mutator.Target, reg *catalog.Registry) {
	numStr := fmt.Sprintf("[%d]", num)

	path := t.Path.String()
	if path == "" {
		path = "(root)"
	}

	if t.Unschematized {
		fmt.Fprintf(outputWriter, "  %s %s | unschematized, structural operators only\n",
			numStr, path)
		return
	}

	fmt.Fprintf(outputWriter, "  %s %s | %s, %d operator(s), weight %d\n",
		numStr,
		path,
		t.Node.Type,
		len(reg.ForType(t.Node.Type)),
		t.Weight(),
	)
}

// printSchemaTree renders the schema as an ASCII tree with a summary column
func printSchemaTree(node *schema.Node, cfg *config.Config) {
	tree := renderSchemaTree(node)

	// Prepare summary lines for the right column
	summaryLines := []string{
		"[ Schema Summary ]",
		strings.Repeat("-", 16),
		fmt.Sprintf("Root Type:  %s", node.Type),
		fmt.Sprintf("Locations:  %d", countSchemaNodes(node)),
		fmt.Sprintf("Max Depth:  %d level(s)", schemaDepth(node)),
		"",
		"[ Strategy Mix ]",
		strings.Repeat("-", 14),
		fmt.Sprintf("Generation: %.0f%%", cfg.Run.GenerationWeight*100),
		fmt.Sprintf("Mutation:   %.0f%%", (1-cfg.Run.GenerationWeight)*100),
		fmt.Sprintf("Violations: %.0f%%", cfg.Run.ViolationProbability*100),
	}

	fmt.Fprintln(outputWriter)
	printHeader("Schema Tree")
	fmt.Fprintln(outputWriter)

	// Print side-by-side: tree on left, summary on right
	printSideBySide(tree, summaryLines, 4)
}

// printSideBySide prints two blocks of text side by side
// padding is the minimum spaces between the two columns
func printSideBySide(leftContent string, rightLines []string, padding int) {
	leftLines := strings.Split(strings.TrimRight(leftContent, "\n"), "\n")

	// Calculate max visual width of left column
	leftWidth := 0
	for _, line := range leftLines {
		w := visualWidth(line)
		if w > leftWidth {
			leftWidth = w
		}
	}

	// Calculate height of each column
	leftHeight := len(leftLines)
	rightHeight := len(rightLines)
	maxHeight := leftHeight
	if rightHeight > maxHeight {
		maxHeight = rightHeight
	}

	// Print rows side by side
	for i := 0; i < maxHeight; i++ {
		leftPart := ""
		rightPart := ""

		if i < leftHeight {
			leftPart = leftLines[i]
		}
		if i < rightHeight {
			rightPart = rightLines[i]
		}

		fmt.Fprint(outputWriter, leftPart)

		// Pad to align the right column
		spacesNeeded := leftWidth - visualWidth(leftPart) + padding
		if spacesNeeded > 0 {
			fmt.Fprint(outputWriter, strings.Repeat(" ", spacesNeeded))
		}

		fmt.Fprintln(outputWriter, rightPart)
	}
}

// visualWidth returns the terminal column width of a string. Property names
// can carry wide or combining runes, so byte and rune counts both misalign.
func visualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// renderSchemaTree draws the schema as a box-drawing tree. Required
// properties are starred.
func renderSchemaTree(node *schema.Node) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("root (%s)\n", describeNode(node)))
	writeTreeChildren(&sb, node, "")
	return sb.String()
}

type treeChild struct {
	label string
	node  *schema.Node
}

func writeTreeChildren(sb *strings.Builder, node *schema.Node, prefix string) {
	var children []treeChild
	switch node.Type {
	case schema.TypeObject:
		for _, p := range node.Properties {
			label := p.Name
			if node.IsRequired(p.Name) {
				label += "*"
			}
			children = append(children, treeChild{label, p.Node})
		}
		if node.AdditionalSchema != nil {
			children = append(children, treeChild{"<additional>", node.AdditionalSchema})
		}
	case schema.TypeArray:
		if node.Items != nil {
			children = append(children, treeChild{"[items]", node.Items})
		}
	}

	for i, c := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		fmt.Fprintf(sb, "%s%s%s (%s)\n", prefix, connector, c.label, describeNode(c.node))
		writeTreeChildren(sb, c.node, childPrefix)
	}
}

// describeNode renders a node's type with its most useful constraints in a
// compact form, e.g. "integer, 0..120" or "string, len 1..32, pattern".
func describeNode(n *schema.Node) string {
	parts := []string{string(n.Type)}
	if n.Nullable {
		parts = append(parts, "nullable")
	}
	switch {
	case n.Numeric():
		if r := rangeLabel(n.Minimum, n.Maximum); r != "" {
			parts = append(parts, r)
		}
	case n.Type == schema.TypeString:
		if r := countLabel("len", n.MinLength, n.MaxLength); r != "" {
			parts = append(parts, r)
		}
		if n.Pattern != "" {
			parts = append(parts, "pattern")
		}
		if n.Format != "" {
			parts = append(parts, n.Format)
		}
	case n.Type == schema.TypeArray:
		if r := countLabel("items", n.MinItems, n.MaxItems); r != "" {
			parts = append(parts, r)
		}
	}
	if len(n.Enum) > 0 {
		parts = append(parts, fmt.Sprintf("enum[%d]", len(n.Enum)))
	}
	return strings.Join(parts, ", ")
}

func rangeLabel(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return trimFloat(*min) + ".." + trimFloat(*max)
	case min != nil:
		return ">=" + trimFloat(*min)
	case max != nil:
		return "<=" + trimFloat(*max)
	}
	return ""
}

func countLabel(unit string, min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%s %d..%d", unit, *min, *max)
	case min != nil:
		return fmt.Sprintf("%s >=%d", unit, *min)
	case max != nil:
		return fmt.Sprintf("%s <=%d", unit, *max)
	}
	return ""
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// countSchemaNodes counts every constraint node reachable from n, including
// n itself.
func countSchemaNodes(n *schema.Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, p := range n.Properties {
		count += countSchemaNodes(p.Node)
	}
	count += countSchemaNodes(n.Items)
	count += countSchemaNodes(n.AdditionalSchema)
	return count
}

// schemaDepth calculates the maximum nesting depth below n
func schemaDepth(n *schema.Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, p := range n.Properties {
		if d := 1 + schemaDepth(p.Node); d > deepest {
			deepest = d
		}
	}
	if n.Items != nil {
		if d := 1 + schemaDepth(n.Items); d > deepest {
			deepest = d
		}
	}
	if n.AdditionalSchema != nil {
		if d := 1 + schemaDepth(n.AdditionalSchema); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// countRequired counts required property names across the whole schema
func countRequired(n *schema.Node) int {
	if n == nil {
		return 0
	}
	count := len(n.Required)
	for _, p := range n.Properties {
		count += countRequired(p.Node)
	}
	count += countRequired(n.Items)
	count += countRequired(n.AdditionalSchema)
	return count
}
