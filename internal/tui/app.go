// Package tui implements the companion terminal client's presentation:
// a scrolling transcript pane and a single-line input pane, built on
// gdamore/tcell/v2. The wire contract it honors is plain newline chat
// lines; everything else here is free-form rendering.
package tui

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"

	"github.com/kbaird/chatterm/internal/wire"
)

var (
	transcriptStyle = tcell.StyleDefault
	systemStyle     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	inputStyle      = tcell.StyleDefault
)

// lineEvent carries a line received from the server into tcell's event
// loop so transcript updates and keyboard input are serialized through
// a single PollEvent loop.
type lineEvent struct {
	tcell.EventTime
	text       string
	system     bool
	nickRevert string
}

// disconnectEvent reports the connection to the server was lost.
type disconnectEvent struct {
	tcell.EventTime
	err error
}

// App is the terminal client's state: the screen, the scrolling
// transcript, the single-line input buffer, and the current connection
// (nil until `/server host port` is used).
type App struct {
	screen tcell.Screen

	transcript []line
	input      []rune

	framer *wire.Framer

	// localNick tracks what the client believes its own display name to
	// be, purely for cosmetic purposes (the server is the source of
	// truth). Updated optimistically on a local /nick attempt, reverted
	// if the server sends back the "/nick <name>" negative-ack line.
	localNick string
}

type line struct {
	text   string
	system bool
}

// New creates an App. Call Run to start it.
func New() (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create screen")
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "unable to init screen")
	}

	return &App{screen: screen}, nil
}

// Run drives the event loop until the user quits.
func (a *App) Run() error {
	defer a.screen.Fini()

	a.addSystem("Type /server <host> <port> to connect, or /quit to exit.")
	a.draw()

	for {
		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()

		case *tcell.EventKey:
			if quit := a.handleKey(ev); quit {
				return nil
			}
			a.draw()

		case *lineEvent:
			if ev.nickRevert != "" {
				a.localNick = ev.nickRevert
			}
			a.transcript = append(a.transcript, line{text: ev.text, system: ev.system})
			a.draw()

		case *disconnectEvent:
			a.framer = nil
			a.addSystem(fmt.Sprintf("Disconnected: %v", ev.err))
			a.draw()
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		text := string(a.input)
		a.input = nil
		return a.submit(text)

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}

	case tcell.KeyCtrlC:
		return true

	case tcell.KeyRune:
		a.input = append(a.input, ev.Rune())
	}

	return false
}

// submit handles one line of local input: either a locally-interpreted
// command (/server, /quit) or text forwarded verbatim to the server.
func (a *App) submit(text string) (quit bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	fields := strings.Fields(trimmed)

	switch fields[0] {
	case "/quit":
		return true

	case "/server":
		if len(fields) != 3 {
			a.addSystem("Usage: /server <host> <port>")
			return false
		}
		a.connect(fields[1], fields[2])
		return false
	}

	if strings.HasPrefix(trimmed, "/nick ") {
		a.localNick = strings.TrimSpace(strings.TrimPrefix(trimmed, "/nick "))
	}

	a.send(trimmed)
	return false
}

func (a *App) connect(host, port string) {
	addr := net.JoinHostPort(host, port)
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		a.addSystem(fmt.Sprintf("Unable to connect to %s: %v", addr, err))
		return
	}

	a.framer = wire.New(conn, 10*time.Second, wire.ReadChunkBytes)
	a.addSystem(fmt.Sprintf("Connected to %s", addr))

	go a.readLoop(a.framer)
}

func (a *App) readLoop(f *wire.Framer) {
	for {
		text, err := f.ReadLine()
		if err != nil {
			a.screen.PostEvent(newDisconnectEvent(err))
			return
		}

		a.handleServerLine(text)
	}
}

// handleServerLine interprets the inbound forms the wire contract
// gives special meaning: a line beginning "/nick " is a negative
// acknowledgement to a rename attempt, carrying the nick to revert to,
// and a "joined chat"/"left chat" arrival or departure announcement
// renders like a system line rather than ordinary chat. Everything
// else is plain display text.
func (a *App) handleServerLine(text string) {
	if rest, ok := strings.CutPrefix(text, "/nick "); ok {
		ev := &lineEvent{
			text:       fmt.Sprintf("(nick rejected, reverted to %s)", rest),
			system:     true,
			nickRevert: rest,
		}
		ev.SetEventNow()
		a.screen.PostEvent(ev)
		return
	}

	a.screen.PostEvent(newLineEvent(text, isArrivalLine(text)))
}

// isArrivalLine reports whether text is a server-generated "<nick>
// joined chat" or "<nick> left chat" announcement, per the wire
// contract chatserver broadcasts on admit and removal.
func isArrivalLine(text string) bool {
	return strings.HasSuffix(text, " joined chat") || strings.HasSuffix(text, " left chat")
}

func (a *App) send(text string) {
	if a.framer == nil {
		a.addSystem("Not connected. Use /server <host> <port>.")
		return
	}

	if err := a.framer.WriteLine(text); err != nil {
		a.addSystem(fmt.Sprintf("Send failed: %v", err))
		a.framer = nil
	}
}

func (a *App) addSystem(text string) {
	a.transcript = append(a.transcript, line{text: text, system: true})
}

func newLineEvent(text string, system bool) *lineEvent {
	ev := &lineEvent{text: text, system: system}
	ev.SetEventNow()
	return ev
}

func newDisconnectEvent(err error) *disconnectEvent {
	ev := &disconnectEvent{err: err}
	ev.SetEventNow()
	return ev
}

// draw renders the transcript pane (all but the last row) and the
// single-line input pane (the last row).
func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if h < 2 {
		a.screen.Show()
		return
	}

	transcriptRows := h - 1
	start := 0
	if len(a.transcript) > transcriptRows {
		start = len(a.transcript) - transcriptRows
	}

	row := 0
	for _, l := range a.transcript[start:] {
		style := transcriptStyle
		if l.system {
			style = systemStyle
		}
		drawText(a.screen, 0, row, w, style, l.text)
		row++
	}

	drawText(a.screen, 0, h-1, w, inputStyle, "> "+string(a.input))

	a.screen.Show()
}

func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}
