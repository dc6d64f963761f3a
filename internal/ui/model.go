package ui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"pkdindustries/taxalert/internal/chat"
	"pkdindustries/taxalert/internal/commands"
	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
)

const sidebarWidth = 34

var transports = []core.Transport{core.TransportSSE, core.TransportStdio, core.TransportHTTP}

type focusArea int

const (
	focusChat focusArea = iota
	focusEndpoint
)

type connectDoneMsg struct {
	cfg core.ConnectionConfig
	err error
}

type replyMsg struct {
	reply *chat.Reply
	err   error
}

// Model is the chat screen: a sidebar for model and server selection,
// the transcript, and an input line
type Model struct {
	state  *chat.State
	cfg    *config.Configuration
	logger *slog.Logger

	viewport viewport.Model
	input    textinput.Model
	endpoint textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	renderer *glamour.TermRenderer
	cmds     *commands.Registry

	models    []string
	modelIdx  int
	transport core.Transport
	endpoints map[core.Transport]string

	focus          focusArea
	busy           bool
	pending        string
	status         string
	notice         string
	err            error
	showExecutions bool
	// tool outputs of the latest turn
	blocks []string

	width  int
	height int
}

func NewModel(state *chat.State, cfg *config.Configuration, version string, logger *slog.Logger) Model {
	in := textinput.New()
	in.Placeholder = "Ask about tax alerts..."
	in.Prompt = "> "
	in.Focus()

	ep := textinput.New()
	ep.Prompt = ""
	ep.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Points

	endpoints := map[core.Transport]string{
		core.TransportSSE:   cfg.Client.URL,
		core.TransportStdio: cfg.Client.Command,
		core.TransportHTTP:  streamableURL(cfg.Client.URL),
	}

	transport := core.Transport(strings.ToLower(cfg.Client.Transport))
	if _, ok := endpoints[transport]; !ok {
		transport = core.TransportSSE
	}
	ep.SetValue(endpoints[transport])

	models := cfg.Client.Models
	idx := 0
	for i, m := range models {
		if m == cfg.Model.Model {
			idx = i
			break
		}
	}

	m := Model{
		state:     state,
		cfg:       cfg,
		logger:    logger,
		viewport:  viewport.New(80, 20),
		input:     in,
		endpoint:  ep,
		spinner:   sp,
		help:      help.New(),
		keys:      defaultKeys(),
		cmds:      commands.NewDefaultRegistry(version),
		models:    models,
		modelIdx:  idx,
		transport: transport,
		endpoints: endpoints,
		status:    "Not connected. Press ^o to connect.",
	}
	m.refresh()
	return m
}

// streamableURL maps the default SSE endpoint onto the streamable HTTP one
func streamableURL(sse string) string {
	if base, ok := strings.CutSuffix(sse, "/sse"); ok {
		return base + "/mcp"
	}
	return sse
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// connection returns the operator's current selection
func (m Model) connection() core.ConnectionConfig {
	var model string
	if len(m.models) > 0 {
		model = m.models[m.modelIdx]
	}
	return core.ConnectionConfig{
		Model:     model,
		Transport: m.transport,
		Endpoint:  strings.TrimSpace(m.endpoint.Value()),
	}
}

func (m Model) connectCmd(cc core.ConnectionConfig) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		return connectDoneMsg{cfg: cc, err: state.Connect(context.Background(), cc)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		reply, err := state.Send(context.Background(), text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "Failed to connect"
			m.logger.Error("connect failed", "transport", msg.cfg.Transport, "endpoint", msg.cfg.Endpoint, "error", msg.err)
		} else {
			m.err = nil
			m.status = "Connected to " + msg.cfg.Endpoint + " using " + msg.cfg.Model
		}
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.pending = ""
		m.err = msg.err
		if msg.err == nil {
			m.status = "Ready"
		}
		if msg.reply != nil {
			m.blocks = msg.reply.Blocks
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		if m.focus == focusEndpoint {
			return m.startConnect()
		}
		return m.startSend()

	case key.Matches(msg, m.keys.Tab):
		m.toggleFocus()
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		if len(m.models) > 0 {
			m.modelIdx = (m.modelIdx + 1) % len(m.models)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevModel):
		if len(m.models) > 0 {
			m.modelIdx = (m.modelIdx - 1 + len(m.models)) % len(m.models)
		}
		return m, nil

	case key.Matches(msg, m.keys.Transport):
		m.cycleTransport()
		return m, nil

	case key.Matches(msg, m.keys.Connect):
		return m.startConnect()

	case key.Matches(msg, m.keys.Clear):
		m.Clear()
		m.status = "Chat cleared"
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ToggleExecutions):
		m.showExecutions = !m.showExecutions
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusEndpoint {
		m.endpoint, cmd = m.endpoint.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) startConnect() (tea.Model, tea.Cmd) {
	cc := m.connection()
	m.endpoints[m.transport] = cc.Endpoint
	m.busy = true
	m.err = nil
	m.status = "Connecting to " + cc.Endpoint + "..."
	return m, tea.Batch(m.spinner.Tick, m.connectCmd(cc))
}

func (m Model) startSend() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	if commands.IsCommand(text) {
		m.notice = m.cmds.Dispatch(&m, text)
		m.refresh()
		return m, nil
	}
	m.notice = ""
	m.busy = true
	m.pending = text
	m.err = nil
	m.status = "Thinking..."
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))
}

func (m *Model) toggleFocus() {
	if m.focus == focusChat {
		m.focus = focusEndpoint
		m.input.Blur()
		m.endpoint.Focus()
		return
	}
	m.focus = focusChat
	m.endpoint.Blur()
	m.input.Focus()
}

func (m *Model) cycleTransport() {
	m.endpoints[m.transport] = m.endpoint.Value()
	for i, t := range transports {
		if t == m.transport {
			m.transport = transports[(i+1)%len(transports)]
			break
		}
	}
	m.endpoint.SetValue(m.endpoints[m.transport])
}

// Clear implements commands.Env
func (m *Model) Clear() {
	m.state.Clear()
	m.blocks = nil
	m.err = nil
	m.notice = ""
}

func (m *Model) Tools() []core.ToolInfo       { return m.state.Tools() }
func (m *Model) Models() []string             { return m.models }
func (m *Model) Connection() *core.Connection { return m.state.Connection() }

// SelectModel picks name in the model list; it takes effect on the next connect
func (m *Model) SelectModel(name string) bool {
	for i, candidate := range m.models {
		if candidate == name {
			m.modelIdx = i
			return true
		}
	}
	return false
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	mainWidth := max(width-sidebarWidth-4, 20)
	// status, input, help and panel borders
	vpHeight := max(height-8, 3)

	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight
	m.input.Width = mainWidth - 4
	m.endpoint.Width = sidebarWidth - 4
	m.help.Width = width
	m.renderer = newRenderer(mainWidth - 2)
	m.refresh()
}

// refresh re-renders the transcript (or the executions panel) into the viewport
func (m *Model) refresh() {
	var content string
	if m.showExecutions {
		content = renderExecutions(m.state.Executions())
	} else {
		content = renderMarkdown(m.renderer, transcriptMarkdown(m.state.Transcript(), m.blocks, m.pending))
	}
	if m.notice != "" {
		content += "\n" + noticeStyle.Render(m.notice)
	}
	if m.err != nil {
		content += "\n" + renderError(m.err)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	sidebar := panelStyle(m.focus == focusEndpoint).
		Width(sidebarWidth).
		Height(m.viewport.Height + 2).
		Render(renderSidebar(m))

	main := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle(false).Render(m.viewport.View()),
		panelStyle(m.focus == focusChat).Width(m.viewport.Width).Render(m.input.View()),
	)

	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main),
		statusStyle.Render(status),
		m.help.View(m.keys),
	)
}
