package ui

import (
	"io"
	"strings"
)

const endMarker = "[END]"

// StreamPrinter prints model chunks as they arrive while keeping the
// trailing end-of-turn marker off the screen, even when the marker is split
// across chunks. Detection of the marker for control-flow purposes happens
// elsewhere, on the complete segment text; this only decides what to show.
type StreamPrinter struct {
	out         io.Writer
	accumulated strings.Builder
	pending     string
}

func NewStreamPrinter(out io.Writer) *StreamPrinter {
	return &StreamPrinter{out: out}
}

// Write prints the chunk, holding back any tail that is, or may still grow
// into, the end marker.
func (p *StreamPrinter) Write(chunk string) {
	p.accumulated.WriteString(chunk)
	text := p.pending + chunk

	holdFrom := len(text)
	trimmed := strings.TrimRight(text, " \t\r\n")
	if strings.HasSuffix(trimmed, endMarker) {
		holdFrom = len(trimmed) - len(endMarker)
	} else if len(trimmed) == len(text) {
		for n := len(endMarker) - 1; n > 0; n-- {
			if strings.HasSuffix(text, endMarker[:n]) {
				holdFrom = len(text) - n
				break
			}
		}
	}

	p.pending = text[holdFrom:]
	if holdFrom > 0 {
		io.WriteString(p.out, text[:holdFrom])
	}
}

// Flush prints any held tail that turned out not to be the end marker.
// Call once when the stream is exhausted.
func (p *StreamPrinter) Flush() {
	held := p.pending
	p.pending = ""
	if held == "" {
		return
	}
	if strings.HasSuffix(strings.TrimRight(held, " \t\r\n"), endMarker) {
		return
	}
	io.WriteString(p.out, held)
}

// Text returns everything received so far, marker included.
func (p *StreamPrinter) Text() string {
	return p.accumulated.String()
}
