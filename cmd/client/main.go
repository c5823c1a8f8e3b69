// mafia-client is a terminal client for the mafia server's line protocol.
//
// Unlike a JSON-framed protocol, the server's own prompts ("Please enter
// your nickname: ") are not newline-terminated — they are meant to sit on
// the same line as whatever the player types next, the way a raw telnet
// session looks. This client therefore does not line-scan the server's
// output at all: a single goroutine forwards raw byte chunks into the
// Bubbletea event loop, which appends them to a scrolling transcript
// verbatim. The player's own input is always sent as one newline-terminated
// line per Enter press, matching the socket service's framing contract.
//
// Concurrency
// -----------
//
//	A single goroutine reads raw chunks from the TCP connection and forwards
//	them to the chunks channel. The Bubbletea event loop consumes one chunk
//	at a time via waitForChunk (a tea.Cmd), immediately queuing the next read
//	after each chunk is processed.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ---------------------------------------------------------------------------
// Styles
// ---------------------------------------------------------------------------

var (
	purple = lipgloss.Color("99")
	gray   = lipgloss.Color("241")
	white  = lipgloss.Color("255")
	red    = lipgloss.Color("196")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(purple).
			Foreground(white).
			Padding(0, 1)

	footerBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), true, false, false, false).
				BorderForeground(gray).
				Padding(0, 1)

	hintStyle  = lipgloss.NewStyle().Foreground(gray).Italic(true)
	echoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(red)
)

// ---------------------------------------------------------------------------
// Bubbletea message types
// ---------------------------------------------------------------------------

type serverChunkMsg string // a raw chunk of bytes arrived from the server
type disconnectedMsg struct{}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

type model struct {
	conn   net.Conn
	chunks chan string // goroutine -> bubbletea bridge

	ready      bool
	viewport   viewport.Model
	input      textinput.Model
	transcript string

	width, height int
	disconnected  bool
}

func newModel(conn net.Conn, chunks chan string) model {
	in := textinput.New()
	in.Placeholder = "type here and press Enter..."
	in.Focus()
	in.CharLimit = 2000

	return model{conn: conn, chunks: chunks, input: in}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChunk(m.chunks))
}

func (m model) vpHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.vpHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.vpHeight()
		}
		m.input.Width = msg.Width - 4
		return m, nil

	case serverChunkMsg:
		m.transcript += string(msg)
		m.viewport.SetContent(m.transcript)
		m.viewport.GotoBottom()
		return m, waitForChunk(m.chunks)

	case disconnectedMsg:
		m.disconnected = true
		m.transcript += errorStyle.Render("\n[disconnected from server]\n")
		m.viewport.SetContent(m.transcript)
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return m, nil

		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return m, nil

		case tea.KeyEnter:
			line := m.input.Value()
			if line != "" && !m.disconnected {
				fmt.Fprintf(m.conn, "%s\n", line)
				m.transcript += echoStyle.Render("» "+line) + "\n"
				m.viewport.SetContent(m.transcript)
				m.viewport.GotoBottom()
				m.input.Reset()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "\n  Connecting..."
	}

	hdr := headerStyle.
		Width(m.width).
		Render(" Mafia  ·  PgUp/Dn: scroll  ·  Ctrl+C: quit")

	footer := footerBorderStyle.
		Width(m.width - 2).
		Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, hdr, m.viewport.View(), footer)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// waitForChunk returns a tea.Cmd that blocks until the next chunk arrives on
// ch. When ch is closed (server disconnected), it returns disconnectedMsg.
func waitForChunk(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		data, ok := <-ch
		if !ok {
			return disconnectedMsg{}
		}
		return serverChunkMsg(data)
	}
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

const readBufSize = 1024

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	chunks := make(chan string, 64)

	// Reader goroutine: TCP -> chunks channel. Raw byte chunks, not lines:
	// the server's own prompts are not newline-terminated.
	go func() {
		defer close(chunks)
		buf := make([]byte, readBufSize)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunks <- string(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	p := tea.NewProgram(
		newModel(conn, chunks),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
