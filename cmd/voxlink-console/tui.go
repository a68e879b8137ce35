package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	realtime "github.com/tvrdic/voxlink-core/core"
	"github.com/tvrdic/voxlink-core/core/events"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	stateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// refreshMsg drives the transcript poll; the registry is the source of
// truth, the ui just re-renders its latest snapshot.
type refreshMsg time.Time

func refreshTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

type console struct {
	handle *realtime.SessionHandle
	input  textinput.Model
	width  int
	height int
	err    error
}

func newConsole(handle *realtime.SessionHandle) console {
	input := textinput.New()
	input.Placeholder = "Say something"
	input.CharLimit = 512
	input.Focus()
	return console{handle: handle, input: input, width: 80, height: 24}
}

func (c console) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refreshTick())
}

func (c console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.input.Width = msg.Width - 4
		return c, nil

	case refreshMsg:
		return c, refreshTick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			c.err = c.handle.Close()
			return c, tea.Quit
		case tea.KeyCtrlT:
			c.err = c.toggleMute()
			return c, nil
		case tea.KeyEnter:
			c.err = c.send()
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *console) send() error {
	message := strings.TrimSpace(c.input.Value())
	if message == "" {
		return nil
	}
	if err := c.handle.SendText(message); err != nil {
		return err
	}
	c.input.Reset()
	return c.handle.CreateResponse(nil)
}

func (c *console) toggleMute() error {
	record, err := c.handle.Session()
	if err != nil {
		return err
	}
	if record.Muted {
		return c.handle.UnmuteAudio()
	}
	return c.handle.MuteAudio()
}

func (c console) View() string {
	record, err := c.handle.Session()
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("session unavailable: %v", err)) + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("voxlink "+record.ID) + " " +
		stateStyle.Render(c.statusLine(record)) + "\n\n")

	for _, transcript := range c.visibleTranscripts(record) {
		style := assistantStyle
		label := "assistant"
		if transcript.Role == events.RoleUser {
			style = userStyle
			label = "you"
		}
		line := fmt.Sprintf("%s: %s", label, transcript.Content)
		b.WriteString(style.Render(wordwrap.String(line, c.width-2)) + "\n")
	}

	for _, sessionError := range record.Errors {
		b.WriteString(errorStyle.Render(wordwrap.String(
			"error: "+sessionError.Message, c.width-2)) + "\n")
	}
	if c.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", c.err)) + "\n")
	}

	b.WriteString("\n" + c.input.View() + "\n")
	b.WriteString(helpStyle.Render("enter send · ctrl+t mute · esc quit") + "\n")
	return b.String()
}

func (c console) statusLine(record realtime.SessionRecord) string {
	status := string(record.State)
	if record.Muted {
		status += " · muted"
	}
	if record.Usage != nil {
		status += fmt.Sprintf(" · %d tokens", record.Usage.TotalTokens)
	}
	return status
}

// visibleTranscripts keeps the tail that fits the terminal, leaving room
// for the header, input, and help lines.
func (c console) visibleTranscripts(record realtime.SessionRecord) []realtime.Transcript {
	budget := c.height - 6
	if budget < 1 {
		budget = 1
	}
	if len(record.Transcripts) <= budget {
		return record.Transcripts
	}
	return record.Transcripts[len(record.Transcripts)-budget:]
}
