package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"pkdindustries/taxalert/internal/chat"
	"pkdindustries/taxalert/internal/core"
)

const glamourStyle = "dark"

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	connectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
	disconnectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

func panelStyle(active bool) lipgloss.Style {
	border := lipgloss.NormalBorder()
	if active {
		return lipgloss.NewStyle().
			Border(border, true).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Border(border, true).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
}

func newRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func fence(s string) string {
	return "```\n" + strings.TrimRight(s, "\n") + "\n```\n"
}

// transcriptMarkdown lays the transcript out as one markdown document.
// Tool output shows as code blocks above the assistant reply: every block of
// the latest turn for the last entry, the final tool output for earlier ones.
func transcriptMarkdown(msgs []chat.Message, blocks []string, pending string) string {
	last := -1
	for i, m := range msgs {
		if m.Role == core.RoleAssistant {
			last = i
		}
	}

	var b strings.Builder
	for i, m := range msgs {
		switch m.Role {
		case core.RoleUser:
			fmt.Fprintf(&b, "**You:** %s\n\n", m.Content)
		case core.RoleAssistant:
			b.WriteString("**Assistant:**\n\n")
			if i == last && len(blocks) > 0 {
				for _, block := range blocks {
					b.WriteString(fence(block))
					b.WriteString("\n")
				}
			} else if m.Tool != "" {
				b.WriteString(fence(m.Tool))
				b.WriteString("\n")
			}
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		}
	}
	if pending != "" {
		fmt.Fprintf(&b, "**You:** %s\n\n", pending)
	}
	return b.String()
}

func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil || md == "" {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func renderError(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render("Error: "+err.Error()) + "\n" + traceStyle.Render(core.Trace(err))
}

func renderExecutions(execs []chat.ToolExecution) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Tool executions"))
	b.WriteString("\n")
	if len(execs) == 0 {
		b.WriteString(dimStyle.Render("none yet"))
		return b.String()
	}
	for i, ex := range execs {
		input, err := json.Marshal(ex.Input)
		if err != nil {
			input = []byte(fmt.Sprintf("%v", ex.Input))
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, selectedStyle.Render(ex.Tool), dimStyle.Render(ex.Time.Format("2006-01-02 15:04:05")))
		fmt.Fprintf(&b, "   input:  %s\n", input)
		fmt.Fprintf(&b, "   output: %s\n", core.Preview(strings.ReplaceAll(ex.Output, "\n", " | "), 200))
	}
	return b.String()
}

func renderSidebar(m Model) string {
	var b strings.Builder

	if m.state.Connected() {
		b.WriteString(connectedStyle.Render("● Connected"))
	} else {
		b.WriteString(disconnectedStyle.Render("○ Not connected"))
	}
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Model"))
	b.WriteString("\n")
	for i, name := range m.models {
		if i == m.modelIdx {
			b.WriteString(selectedStyle.Render("▸ " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Transport"))
	b.WriteString("\n")
	for _, t := range transports {
		if t == m.transport {
			b.WriteString(selectedStyle.Render("▸ " + string(t)))
		} else {
			b.WriteString("  " + string(t))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.endpoint.View())
	b.WriteString("\n")

	if tools := m.state.Tools(); len(tools) > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Available tools"))
		b.WriteString("\n")
		for _, t := range tools {
			b.WriteString("- " + t.Name + "\n")
		}
	}
	return b.String()
}
