// internal/tui/ask.go
// Package tui provides the interactive ask session: a Bubble Tea program
// that streams provider answers into a scrollable transcript.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgearhart/foliolab/internal/appconfig"
	"github.com/mgearhart/foliolab/internal/logging"
	"github.com/mgearhart/foliolab/internal/offload"
	"github.com/mgearhart/foliolab/internal/prompt"
	"github.com/mgearhart/foliolab/internal/providers"
)

// Options carries the wired dependencies for an ask session.
type Options struct {
	Config    *appconfig.Config
	Host      *offload.Host
	Generator providers.Generator
}

// streamChunkMsg is a message sent when a new token of a streaming response
// is received.
type streamChunkMsg string

// streamEndMsg is a message sent when a streaming response has completed.
type streamEndMsg struct{}

// streamErrMsg is a message sent when an error occurs during a streaming
// response.
type streamErrMsg struct{ error }

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// model is the Bubble Tea model for the ask session.
type model struct {
	ctx     context.Context
	opts    Options
	program *tea.Program

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	transcript []string
	answer     strings.Builder
	streaming  bool
	ready      bool
	status     string
}

func newModel(ctx context.Context, opts Options) *model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the portfolio and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &model{
		ctx:      ctx,
		opts:     opts,
		input:    ti,
		viewport: viewport.New(0, 0),
		spin:     sp,
		status:   "Index ready. Provider: " + opts.Generator.Name() + ". Esc to quit.",
	}
}

// RunAsk starts the interactive session and blocks until the user quits.
func RunAsk(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p
	_, err := p.Run()
	return err
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		height := msg.Height - th - ih - 3
		if height < 3 {
			height = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = height
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.streaming {
				return m, nil
			}
			m.transcript = append(m.transcript, questionStyle.Render("You: ")+question)
			m.input.Reset()
			m.answer.Reset()
			m.streaming = true
			m.status = "Waiting for " + m.opts.Generator.Name()
			m.refresh()
			return m, tea.Batch(m.spin.Tick, m.streamCmd(question))
		}

	case streamChunkMsg:
		m.answer.WriteString(string(msg))
		m.refresh()
		return m, nil

	case streamEndMsg:
		m.commitAnswer("")
		return m, nil

	case streamErrMsg:
		m.commitAnswer(errorStyle.Render("error: " + msg.Error()))
		return m, nil

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := statusStyle.Render(m.status)
	if m.streaming {
		status = m.spin.View() + " " + status
	}
	return transcriptStyle.Render(m.viewport.View()) + "\n" +
		inputStyle.Render(m.input.View()) + "\n" +
		status
}

// streamCmd retrieves context for the question and streams the provider's
// answer back into the program as messages.
func (m *model) streamCmd(question string) tea.Cmd {
	ctx := m.ctx
	opts := m.opts
	p := m.program
	return func() tea.Msg {
		go func() {
			scored, err := opts.Host.TopK(ctx, question, opts.Config.RetrievalTopK())
			if err != nil {
				p.Send(streamErrMsg{err})
				return
			}
			req := providers.GenerateRequest{
				Prompt: prompt.Build(question, scored, opts.Config.ContextTokenLimit),
				System: prompt.System,
			}
			logging.LogRequest("APP->LLM", opts.Generator.Name(), "", req.Prompt)
			if err := opts.Generator.GenerateStream(ctx, req, func(delta string) error {
				p.Send(streamChunkMsg(delta))
				return nil
			}); err != nil {
				p.Send(streamErrMsg{err})
				return
			}
			p.Send(streamEndMsg{})
		}()
		return nil
	}
}

// commitAnswer moves the streamed answer into the transcript, appending a
// trailing line (an error, usually) when one is given.
func (m *model) commitAnswer(trailer string) {
	if text := strings.TrimSpace(m.answer.String()); text != "" {
		m.transcript = append(m.transcript, text)
	}
	if trailer != "" {
		m.transcript = append(m.transcript, trailer)
	}
	m.answer.Reset()
	m.streaming = false
	m.status = "Esc to quit."
	m.refresh()
}

func (m *model) renderTranscript() string {
	if len(m.transcript) == 0 && m.answer.Len() == 0 {
		return "No questions yet."
	}
	lines := strings.Join(m.transcript, "\n\n")
	if m.answer.Len() > 0 {
		if lines != "" {
			lines += "\n\n"
		}
		lines += m.answer.String()
	}
	return lines
}

func (m *model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
