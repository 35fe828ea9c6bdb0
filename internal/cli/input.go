// Package cli is a line-oriented harness for exercising the session
// engine against a real provider from a terminal, for DBG and manual
// testing.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/anticomputer/corfu/pkg/host"
	"github.com/anticomputer/corfu/pkg/session"
	"github.com/charmbracelet/log"
)

// InputHandler drives one engine over one in-memory buffer. Typed
// text becomes buffer edits; dot-prefixed lines become selection and
// commit commands.
type InputHandler struct {
	engine *session.Engine
	buffer *host.Buffer
}

// NewInputHandler wires a handler around an engine and its buffer.
func NewInputHandler(engine *session.Engine, buffer *host.Buffer) *InputHandler {
	return &InputHandler{engine: engine, buffer: buffer}
}

// Start begins the interface loop. Each line from stdin is either a
// command (".next", ".ret", ...) or text appended to the buffer.
// The loop terminates on read error or the ".quit" command.
func (h *InputHandler) Start() error {
	log.Print("Corfu CLI [BETA]")
	log.Print("type to edit the field, '.help' lists commands (Ctrl+C to exit):")
	reader := bufio.NewReader(os.Stdin)

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if !h.handleCommand(strings.TrimSpace(line)) {
				return nil
			}
		} else {
			h.buffer.Insert(line)
			h.engine.NotifyEdit()
		}
		h.show()
	}
}

// handleCommand dispatches one dot command. It returns false when
// the loop should stop.
func (h *InputHandler) handleCommand(cmd string) bool {
	switch cmd {
	case ".help":
		log.Print(".start .next .prev .first .last .pgup .pgdn")
		log.Print(".tab .ins .ret .reset .esc .back .doc .loc .quit")
	case ".start":
		h.engine.Start()
	case ".next":
		h.engine.Next()
	case ".prev":
		h.engine.Previous()
	case ".first":
		h.engine.First()
	case ".last":
		h.engine.Last()
	case ".pgup":
		h.engine.PageUp()
	case ".pgdn":
		h.engine.PageDown()
	case ".tab":
		h.engine.CompleteOrCycle()
	case ".ins":
		if err := h.engine.Insert(); err != nil {
			log.Warnf("Insert failed: %v", err)
		}
	case ".ret":
		h.engine.Finish()
	case ".reset":
		h.engine.Reset()
	case ".esc":
		h.engine.Quit()
	case ".back":
		h.buffer.DeleteBack(1)
		h.engine.NotifyEdit()
	case ".doc":
		doc, err := h.engine.ShowDocumentation()
		if err != nil {
			log.Warnf("No documentation: %v", err)
		} else {
			log.Print(doc)
		}
	case ".loc":
		loc, err := h.engine.ShowLocation()
		if err != nil {
			log.Warnf("No location: %v", err)
		} else {
			log.Printf("%s:%d %s", loc.File, loc.Line, loc.Text)
		}
	case ".quit":
		h.engine.Quit()
		return false
	default:
		log.Errorf("Unknown command: %s", cmd)
	}
	return true
}

// show prints the field and, when a session is live, the popup frame
// under it.
func (h *InputHandler) show() {
	text, cursor := h.buffer.Span()
	log.Printf("field: %q cursor: %d", text, cursor)
	if preview, ok := h.engine.Preview(); ok {
		log.Printf("preview: %q", preview)
	}
	if frame, ok := h.engine.Frame(); ok {
		fmt.Fprintln(os.Stderr, frame.String())
	}
}
