// Package tui is the interactive chat dashboard over the RAG pipeline.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatPort is the dashboard-facing subset of the application core.
type ChatPort interface {
	Ask(ctx context.Context, question string) (string, error)
	IngestFile(ctx context.Context, path string) (int, error)
}

type message struct {
	role string // "user" or "assistant"
	text string
}

type stats struct {
	files       int
	chunks      int
	lastUpdated string
}

// Model is the Bubble Tea model for the chat dashboard.
type Model struct {
	port     ChatPort
	input    textinput.Model
	viewport viewport.Model
	history  []message
	sources  map[string]struct{}
	stats    stats
	status   string
	ready    bool
}

// New creates the dashboard model.
func New(port ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or :ingest <path> to add a document"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{port: port, input: ti, viewport: vp, sources: make(map[string]struct{}), status: "Ready."}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + stats, status line, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			if rest, ok := strings.CutPrefix(line, ":ingest "); ok {
				return m.ingest(strings.TrimSpace(rest)), nil
			}
			return m.ask(line), nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ingest(path string) Model {
	chunks, err := m.port.IngestFile(context.Background(), path)
	if err != nil {
		m.status = "Ingest failed: " + err.Error()
		return m
	}
	// Re-ingesting the same file adds chunks but is not a new document.
	m.sources[filepath.Base(path)] = struct{}{}
	m.stats.files = len(m.sources)
	m.stats.chunks += chunks
	m.stats.lastUpdated = time.Now().Format("02 Jan 2006, 15:04")
	m.status = fmt.Sprintf("Ingested %s, %d chunk(s) added.", path, chunks)
	m.viewport.SetContent(m.renderHistory())
	return m
}

func (m Model) ask(question string) Model {
	m.history = append(m.history, message{role: "user", text: question})

	// Any failure is rendered inline; the session never aborts.
	answer, err := m.port.Ask(context.Background(), question)
	if err != nil {
		answer = "Sorry, something went wrong:\n\n" + err.Error()
	}
	m.history = append(m.history, message{role: "assistant", text: answer})
	m.status = "Ready."
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m
}

// View renders the dashboard layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docchat")
	statsLine := statsStyle.Render(fmt.Sprintf(
		"Documents: %d  Chunks: %d  Updated: %s",
		m.stats.files, m.stats.chunks, orDash(m.stats.lastUpdated),
	))
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + statsLine + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No messages yet. Upload documents with :ingest, then ask away."
	}
	var b strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.role == "user" {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(assistantStyle.Render("Assistant: "))
		}
		b.WriteString(msg.text)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	statsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)
