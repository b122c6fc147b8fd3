package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/qcrop/internal/question"
)

// PrintReport writes the per-page question counts and the grand total.
// Pages that failed are listed with their error after the totals.
func PrintReport(w io.Writer, idx *question.Index, report *question.Report) {
	for _, page := range idx.Pages() {
		entries, _ := idx.Page(page)
		fmt.Fprintf(w, "Page %d: %d questions -> %s\n", page, len(entries), formatQNums(entries))
	}
	fmt.Fprintf(w, "Total questions indexed: %d\n", idx.Total())

	if report == nil {
		return
	}
	for _, r := range report.Failed() {
		fmt.Fprintf(w, "Page %d failed: %v\n", r.Page, r.Err)
	}
}

// MarkdownReport renders the same report as a Markdown document.
func MarkdownReport(idx *question.Index, report *question.Report) string {
	var sb strings.Builder
	sb.WriteString("# Question index\n\n")
	sb.WriteString("| Page | Questions | Numbers |\n")
	sb.WriteString("|---:|---:|---|\n")
	for _, page := range idx.Pages() {
		entries, _ := idx.Page(page)
		fmt.Fprintf(&sb, "| %d | %d | %s |\n", page, len(entries), formatQNums(entries))
	}
	fmt.Fprintf(&sb, "\n**Total questions indexed:** %d\n", idx.Total())

	if report != nil {
		if failed := report.Failed(); len(failed) > 0 {
			sb.WriteString("\n## Failed pages\n\n")
			for _, r := range failed {
				fmt.Fprintf(&sb, "- Page %d: `%v`\n", r.Page, r.Err)
			}
		}
	}
	return sb.String()
}

func formatQNums(entries []question.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%d", e.QNum))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
