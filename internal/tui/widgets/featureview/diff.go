package featureview

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"

	"mapdash/internal/tui/widgets/kvtable"
)

var (
	diffDelLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	diffAddLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	diffDelChar = diffDelLine.Underline(true)
	diffAddChar = diffAddLine.Underline(true)
)

// renderDiff lists the properties whose value changed between before and after,
// with char-level highlights on values present on both sides.
func renderDiff(before, after map[string]any) string {
	keys := map[string]bool{}
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var sb strings.Builder
	for _, k := range ordered {
		bv, inB := before[k]
		av, inA := after[k]
		bs, as := kvtable.FormatValue(bv), kvtable.FormatValue(av)
		switch {
		case inB && !inA:
			sb.WriteString(diffDelLine.Render("- "+k+": "+bs) + "\n")
		case !inB && inA:
			sb.WriteString(diffAddLine.Render("+ "+k+": "+as) + "\n")
		case bs != as:
			d := dmp.New()
			diffs := d.DiffMain(bs, as, false)
			d.DiffCleanupSemantic(diffs)
			sb.WriteString(diffDelLine.Render("- " + k + ": "))
			for _, df := range diffs {
				switch df.Type {
				case dmp.DiffDelete:
					sb.WriteString(diffDelChar.Render(df.Text))
				case dmp.DiffEqual:
					sb.WriteString(diffDelLine.Render(df.Text))
				}
			}
			sb.WriteString("\n")
			sb.WriteString(diffAddLine.Render("+ " + k + ": "))
			for _, df := range diffs {
				switch df.Type {
				case dmp.DiffInsert:
					sb.WriteString(diffAddChar.Render(df.Text))
				case dmp.DiffEqual:
					sb.WriteString(diffAddLine.Render(df.Text))
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
