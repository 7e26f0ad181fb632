package pushcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/push"
)

var errPushCancelled = errors.New("push cancelled")

type pickerState int

const (
	statePicking pickerState = iota
	stateSending
	stateDone
)

type pushDoneMsg struct {
	result push.Result
	err    error
}

type pickerKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Enter, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Enter, k.Quit}}
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "push")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type pickerStyles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	name     lipgloss.Style
	spinner  lipgloss.Style
}

func newPickerStyles(out io.Writer) pickerStyles {
	// Honour NO_COLOR and CLICOLOR_FORCE for the picker's own output.
	r := lipgloss.NewRenderer(out, termenv.WithProfile(termenv.EnvColorProfile()))
	return pickerStyles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("240")),
		selected: r.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true),
		name:     r.NewStyle().Foreground(lipgloss.Color("252")),
		spinner:  r.NewStyle().Foreground(lipgloss.Color("82")),
	}
}

type pickerModel struct {
	ctx     context.Context
	pusher  Pusher
	items   []integration.Summary
	content string
	title   string

	state   pickerState
	cursor  int
	width   int
	result  push.Result
	err     error
	spinner spinner.Model
	keys    pickerKeyMap
	help    help.Model
	styles  pickerStyles
}

func newPickerModel(ctx context.Context, pusher Pusher, items []integration.Summary, content, title, preselect string, styles pickerStyles) pickerModel {
	cursor := 0
	for i, it := range items {
		if it.Key == preselect {
			cursor = i
		}
	}

	return pickerModel{
		ctx:     ctx,
		pusher:  pusher,
		items:   items,
		content: content,
		title:   title,
		cursor:  cursor,
		width:   80,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.spinner)),
		keys:    defaultPickerKeyMap(),
		help:    help.New(),
		styles:  styles,
	}
}

func (m pickerModel) Init() bubbletea.Cmd {
	return nil
}

func (m pickerModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case bubbletea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != stateSending {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pushDoneMsg:
		m.state = stateDone
		m.result = msg.result
		m.err = msg.err
		return m, bubbletea.Quit
	}

	return m, nil
}

func (m pickerModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	if m.state != statePicking {
		// The push runs to completion; only an explicit interrupt leaves early.
		if msg.String() == "ctrl+c" {
			m.state = stateDone
			m.err = errPushCancelled
			return m, bubbletea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state = stateDone
		m.err = errPushCancelled
		return m, bubbletea.Quit
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Enter):
		if len(m.items) == 0 {
			return m, nil
		}
		m.state = stateSending
		return m, bubbletea.Batch(m.spinner.Tick, m.send(m.items[m.cursor].Key))
	}

	return m, nil
}

func (m pickerModel) send(key string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		res, err := m.pusher.Push(m.ctx, key, m.content, m.title)
		return pushDoneMsg{result: res, err: err}
	}
}

func (m pickerModel) selected() string {
	if m.cursor < len(m.items) {
		return m.items[m.cursor].Key
	}
	return ""
}

func (m pickerModel) View() string {
	switch m.state {
	case stateSending:
		return fmt.Sprintf("\n  %s Pushing to %s\n", m.spinner.View(), m.styles.name.Render(m.selected()))
	case stateDone:
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + m.styles.title.Render("Push to which integration?") + "\n")

	firstLine, _, _ := strings.Cut(strings.TrimSpace(m.content), "\n")
	b.WriteString("  " + m.styles.muted.Render(ansi.Truncate(firstLine, max(m.width-4, 10), "…")) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString("  " + m.styles.muted.Render("No configured integrations.") + "\n")
	}

	for i, it := range m.items {
		line := fmt.Sprintf("%-10s %s", it.Key, it.Instance)
		if i == m.cursor {
			b.WriteString("  " + m.styles.selected.Render("› "+line) + "\n")
		} else {
			b.WriteString("    " + m.styles.name.Render(line) + "\n")
		}
	}

	b.WriteString("\n  " + m.styles.muted.Render(m.help.View(m.keys)) + "\n")
	return b.String()
}

func (c *pushCommander) runInteractive(ctx context.Context, pusher Pusher, items []integration.Summary, content string) error {
	model := newPickerModel(ctx, pusher, items, content, c.title, c.integration, newPickerStyles(c.out))

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithInput(c.in),
		bubbletea.WithOutput(c.out),
	)

	final, err := program.Run()
	if err != nil {
		return err
	}

	m, ok := final.(pickerModel)
	if !ok {
		return fmt.Errorf("unexpected model type %T", final)
	}
	if errors.Is(m.err, errPushCancelled) {
		return m.err
	}

	return c.report(m.result, m.err)
}
