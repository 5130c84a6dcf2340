package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var counts = message.NewPrinter(language.English)

// formatCount groups digits, e.g. 12,345.
func formatCount(n int) string {
	return counts.Sprintf("%d", n)
}

// DeadFileReport renders a detection report. Text and markdown show paths
// relative to the report root; JSON and TOON keep canonical paths.
type DeadFileReport struct {
	Report *deadfile.Report
}

// NewDeadFileReport wraps r for rendering.
func NewDeadFileReport(r *deadfile.Report) *DeadFileReport {
	return &DeadFileReport{Report: r}
}

// RelPath returns path relative to root, or path unchanged when it lies
// outside root.
func RelPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

type bucket struct {
	title string
	items []string
	paths bool
}

func (d *DeadFileReport) buckets() []bucket {
	r := d.Report
	return []bucket{
		{"Unresolved Dependencies", r.UnresolvedDependencies, false},
		{"Unparsed Files", r.UnparsedDependencies, true},
		{"Dynamic Imports", r.DynamicDependencies, true},
		{"Ignored Files", r.IgnoredDependencies, true},
	}
}

func (d *DeadFileReport) display(items []string, paths bool) []string {
	if !paths {
		return items
	}
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = RelPath(d.Report.Root, p)
	}
	return out
}

func (d *DeadFileReport) summary() *Table {
	s := d.Report.Summary()
	rows := [][]string{
		{"Dead files", formatCount(s.DeadFiles)},
		{"Reached files", formatCount(s.Dependencies)},
		{"Dynamic imports", formatCount(s.Dynamic)},
		{"Unparsed files", formatCount(s.Unparsed)},
		{"Unresolved specifiers", formatCount(s.Unresolved)},
		{"Ignored files", formatCount(s.Ignored)},
	}
	return NewTable("Summary", []string{"Category", "Count"}, rows, s)
}

func (d *DeadFileReport) RenderData() any {
	return d.Report
}

func (d *DeadFileReport) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, "Dead Files", colored, color.Bold, color.FgCyan)

	if len(d.Report.DeadFiles) == 0 {
		if colored {
			color.New(color.FgGreen).Fprintln(w, "No dead files found.")
		} else {
			fmt.Fprintln(w, "No dead files found.")
		}
	}
	for _, f := range d.display(d.Report.DeadFiles, true) {
		if colored {
			fmt.Fprintf(w, "  %s\n", color.RedString(f))
		} else {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	fmt.Fprintln(w)

	for _, b := range d.buckets() {
		if len(b.items) == 0 {
			continue
		}
		heading := fmt.Sprintf("%s (%s)", b.title, formatCount(len(b.items)))
		if colored {
			color.New(color.Bold, color.FgYellow).Fprintln(w, heading)
		} else {
			fmt.Fprintln(w, heading)
		}
		for _, item := range d.display(b.items, b.paths) {
			fmt.Fprintf(w, "  %s\n", item)
		}
		fmt.Fprintln(w)
	}

	return d.summary().RenderText(w, colored)
}

func (d *DeadFileReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Dead Files\n\n")
	if len(d.Report.DeadFiles) == 0 {
		fmt.Fprintf(w, "No dead files found.\n\n")
	} else {
		for _, f := range d.display(d.Report.DeadFiles, true) {
			fmt.Fprintf(w, "- `%s`\n", f)
		}
		fmt.Fprintln(w)
	}

	for _, b := range d.buckets() {
		if len(b.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "## %s (%s)\n\n", b.title, formatCount(len(b.items)))
		for _, item := range d.display(b.items, b.paths) {
			fmt.Fprintf(w, "- `%s`\n", item)
		}
		fmt.Fprintln(w)
	}

	return d.summary().RenderMarkdown(w)
}
