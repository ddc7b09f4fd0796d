package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estimator/internal/normalizer"
	"estimator/internal/service"
)

const resultLimit = 20

// Port is the TUI-facing subset of the service.
type Port interface {
	Search(ctx context.Context, req service.SearchRequest) (service.SearchResponse, error)
	Details(ctx context.Context, req service.DetailsRequest) (service.DetailsResponse, error)
}

// Model is the Bubble Tea model for the interactive console. A line of text
// searches the catalog; a line of the form "=150" prices the selected rate.
type Model struct {
	ctx       context.Context
	service   Port
	input     textinput.Model
	viewport  viewport.Model
	results   []service.SearchHit
	details   *service.DetailsResponse
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc Port, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the work and press Enter, or =quantity to price the selection"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: svc, input: ti, viewport: vp, summary: summary, status: "Ready. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		// header, summary, status and one spacer
		reserved := 4 + qh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				break
			}
			m.input.SetValue("")
			if strings.HasPrefix(line, "=") {
				m.price(strings.TrimSpace(line[1:]))
			} else {
				m.search(line)
			}
			m.viewport.SetContent(m.render())
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.details = nil
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.details = nil
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) search(q string) {
	resp, err := m.service.Search(m.ctx, service.SearchRequest{Query: q, Limit: resultLimit})
	m.details = nil
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		return
	}
	m.results = resp.Results
	m.cursor = 0
	m.lastQuery = q
	m.status = fmt.Sprintf("%d results for %q (%s)", resp.Count, q, resp.Strategy)
}

func (m *Model) price(arg string) {
	if len(m.results) == 0 {
		m.status = "Search first, then enter =quantity"
		return
	}
	q, err := strconv.ParseFloat(strings.ReplaceAll(arg, ",", "."), 64)
	if err != nil {
		m.status = fmt.Sprintf("Not a quantity: %q", arg)
		return
	}
	code := m.results[m.cursor].RateCode
	d, err := m.service.Details(m.ctx, service.DetailsRequest{RateCode: code, Quantity: q, SortByCost: true})
	if err != nil {
		m.status = "Error: " + err.Error()
		m.details = nil
		return
	}
	m.details = &d
	m.status = fmt.Sprintf("%s × %g %s = %.2f", code, q, d.UnitType, d.Total)
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Construction Rate Estimator")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Result %d/%d  score=%.4f\n\n", m.cursor+1, len(m.results), r.Score)
	fmt.Fprintf(&b, "%s\n%s\n", codeStyle.Render(r.RateCode), highlightTerms(r.FullName, m.lastQuery))
	fmt.Fprintf(&b, "%.2f per %g %s (%.2f per %s)\n", r.TotalCost, r.UnitQuantity, r.UnitType, r.CostPerUnit, r.UnitType)
	if m.details != nil {
		b.WriteString("\n")
		b.WriteString(renderDetails(*m.details))
	}
	return b.String()
}

func renderDetails(d service.DetailsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quantity %g %s (×%g)\n", d.Quantity, d.UnitType, d.ScaleFactor)
	fmt.Fprintf(&b, "Total %.2f  materials %.2f  resources %.2f\n", d.Total, d.Materials, d.Resources)
	if d.Overhead != 0 || d.Profit != 0 {
		fmt.Fprintf(&b, "Overhead %.2f  profit %.2f  grand total %.2f\n", d.Overhead, d.Profit, d.GrandTotal)
	}
	for _, s := range d.Subtotals {
		fmt.Fprintf(&b, "  %-10s %3d lines  %.2f\n", s.Kind, s.Lines, s.Cost)
	}
	if len(d.Breakdown) > 0 {
		b.WriteString("\n")
	}
	for _, l := range d.Breakdown {
		fmt.Fprintf(&b, "  %-12s %-40s %10.4f %-8s %12.2f\n", l.Code, truncate(l.Name, 40), l.AdjustedQuantity, l.Unit, l.AdjustedCost)
	}
	for i, s := range d.WorkSteps {
		if i == 0 {
			b.WriteString("\nWork steps:\n")
		}
		fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	codeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// highlightTerms emphasizes the words of text that start with a query term.
func highlightTerms(text, query string) string {
	terms := normalizer.Tokenize(query)
	if len(terms) == 0 {
		return text
	}
	words := strings.Fields(text)
	for i, w := range words {
		folded := normalizer.Fold(w)
		for _, t := range terms {
			if t != "" && strings.HasPrefix(strings.TrimSpace(folded), t) {
				words[i] = highlightStyle.Render(w)
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
