// Package tui is the interactive tester console: it plays a phone on a
// tester backend, sends typed texts through the router and shows the
// replies as they leave the platform.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/nsms/foundation/utils/stringx"
	"github.com/msto63/nsms/internal/message"
	"github.com/msto63/nsms/internal/router"
)

// phoneColumn aligns local numbers in the conversation view.
const phoneColumn = 10

// Router is the part of the router the console needs.
type Router interface {
	HandleIncoming(ctx context.Context, backend, sender, text string) (*router.Result, error)
}

// Config holds console configuration
type Config struct {
	Router  Router
	Backend string
	Sender  string

	// Replies delivers outgoing tester messages. When nil the reply is
	// taken from the router result instead.
	Replies <-chan *message.Message

	Timeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Backend: "tester",
		Sender:  "0700000000",
		Timeout: 10 * time.Second,
	}
}

// Model is the tester console model
type Model struct {
	width  int
	height int
	ready  bool
	busy   bool

	input    textinput.Model
	viewport viewport.Model

	entries []entry
	router  Router
	replies <-chan *message.Message
	backend string
	sender  string
	timeout time.Duration
}

// New creates a console model
func New(cfg Config) Model {
	def := DefaultConfig()
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.Sender == "" {
		cfg.Sender = def.Sender
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	ti := textinput.New()
	ti.Placeholder = "Type an SMS, /sender <number> to switch phones"
	ti.CharLimit = 480
	ti.Focus()

	return Model{
		input:   ti,
		router:  cfg.Router,
		replies: cfg.Replies,
		backend: cfg.Backend,
		sender:  cfg.Sender,
		timeout: cfg.Timeout,
	}
}

// Init starts the cursor and the reply listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForReply())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 5
		height := max(msg.Height-headerHeight-footerHeight, 3)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - 6
		m.updateContent()
		return m, nil

	case sentMsg:
		m.busy = false
		if msg.index < len(m.entries) && msg.result != nil {
			m.entries[msg.index].handler = msg.result.Handler
		}
		if msg.err != nil {
			m.notice(msg.err.Error(), true)
		}
		if m.replies == nil && msg.result != nil && msg.result.Reply != nil {
			m.addMessage(msg.result.Reply)
		}
		m.updateContent()
		return m, nil

	case replyMsg:
		m.addMessage(msg.msg)
		m.updateContent()
		return m, m.waitForReply()

	case repliesClosedMsg:
		m.replies = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.input.Reset()

		if strings.HasPrefix(text, "/") {
			m.runCommand(text)
			m.updateContent()
			return m, nil
		}

		m.entries = append(m.entries, entry{
			direction: message.Incoming,
			identity:  m.sender,
			text:      text,
			class:     "cin",
			at:        time.Now(),
		})
		m.busy = true
		m.updateContent()
		return m, m.send(len(m.entries)-1, m.sender, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runCommand handles console commands starting with '/'.
func (m *Model) runCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/sender":
		if len(fields) != 2 {
			m.notice("usage: /sender <number>", true)
			return
		}
		m.sender = fields[1]
		m.notice("now sending as "+m.sender, false)
	case "/clear":
		m.entries = nil
	default:
		m.notice("unknown console command "+fields[0], true)
	}
}

func (m *Model) notice(text string, isErr bool) {
	m.entries = append(m.entries, entry{text: text, err: isErr, at: time.Now()})
}

func (m *Model) addMessage(msg *message.Message) {
	m.entries = append(m.entries, entry{
		direction: msg.Direction,
		identity:  msg.Identity,
		text:      msg.Text,
		class:     message.DisplayClass(msg),
		at:        msg.Date,
	})
}

// send passes text to the router
func (m Model) send(index int, sender, text string) tea.Cmd {
	r, backend, timeout := m.router, m.backend, m.timeout
	return func() tea.Msg {
		if r == nil {
			return sentMsg{index: index, err: fmt.Errorf("no router configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := r.HandleIncoming(ctx, backend, sender, text)
		return sentMsg{index: index, result: res, err: err}
	}
}

// waitForReply blocks on the subscription until the next reply
func (m Model) waitForReply() tea.Cmd {
	ch := m.replies
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return repliesClosedMsg{}
		}
		return replyMsg{msg: msg}
	}
}

// View renders the console
func (m Model) View() string {
	if !m.ready {
		return "Loading console..."
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("nsms tester") + "  " +
		SubtitleStyle.Render(fmt.Sprintf("backend %s, phone %s", m.backend, m.sender)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(FocusedInputStyle.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderStatusBar() string {
	status := fmt.Sprintf("%d messages", m.countMessages())
	if m.busy {
		status = "sending..."
	}
	return StatusBarStyle.Render(status) + " " +
		RenderHelp("enter send | /sender <n> | /clear | pgup/pgdn scroll | esc quit")
}

func (m Model) countMessages() int {
	n := 0
	for _, e := range m.entries {
		if e.direction != "" {
			n++
		}
	}
	return n
}

// updateContent redraws the conversation and keeps the newest line visible
func (m *Model) updateContent() {
	if !m.ready {
		return
	}

	var content strings.Builder
	for _, e := range m.entries {
		stamp := e.at.Local().Format("15:04:05")
		switch {
		case e.direction == message.Incoming:
			line := IncomingStyle.Render(fmt.Sprintf("%s %s > %s", stamp, stringx.PadRight(e.identity, phoneColumn), e.text))
			if e.handler != "" {
				line += " " + HandlerStyle.Render("["+e.handler+"]")
			}
			content.WriteString(line)
		case e.direction == message.Outgoing:
			content.WriteString(OutgoingStyle.Render(fmt.Sprintf("%s %s < %s", stamp, stringx.PadRight("", phoneColumn), e.text)))
		case e.err:
			content.WriteString(RenderError(e.text))
		default:
			content.WriteString(SystemMessageStyle.Render(e.text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// Run starts the console and blocks until the user quits
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
