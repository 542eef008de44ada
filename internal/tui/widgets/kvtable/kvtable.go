package kvtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Model is a generic two-column key/value display. It shows whatever it is
// given; values are formatted with %v.
type Model struct {
	t      table.Model
	values map[string]any
	width  int
	height int
}

// New returns an empty table of the given size.
func New(width, height int) *Model {
	t := table.New(
		table.WithColumns(columns(width, 0)),
		table.WithFocused(false),
		table.WithHeight(height),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	st.Selected = lipgloss.NewStyle()
	t.SetStyles(st)
	return &Model{t: t, width: width, height: height}
}

func columns(width, keyWidth int) []table.Column {
	if width < 20 {
		width = 20
	}
	kw := keyWidth
	if kw < 4 {
		kw = 4
	}
	if kw > width/3 {
		kw = width / 3
	}
	return []table.Column{
		{Title: "Key", Width: kw},
		{Title: "Value", Width: width - kw - 4},
	}
}

// SetRows replaces the displayed properties. A nil map clears the display.
func (m *Model) SetRows(props map[string]any) {
	m.values = props
	keys := sortedKeys(props)
	kw := 0
	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		if n := len([]rune(k)); n > kw {
			kw = n
		}
		rows = append(rows, table.Row{k, FormatValue(props[k])})
	}
	m.t.SetColumns(columns(m.width, kw))
	m.t.SetRows(rows)
}

// Values returns the map last passed to SetRows.
func (m *Model) Values() map[string]any { return m.values }

func (m *Model) Len() int { return len(m.values) }

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.t.SetHeight(height)
	m.SetRows(m.values)
}

func (m *Model) View() string {
	if len(m.values) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("(no properties)")
	}
	return m.t.View()
}

// Plain renders props as "key: value" lines in key order.
func Plain(props map[string]any) string {
	var b strings.Builder
	for _, k := range sortedKeys(props) {
		fmt.Fprintf(&b, "%s: %s\n", k, FormatValue(props[k]))
	}
	return b.String()
}

func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; keep integers free of a trailing ".0"
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
