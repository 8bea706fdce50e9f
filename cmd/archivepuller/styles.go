package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FE5F86", Dark: "#FE5F86"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
)

// styles renders status words for one output stream. Colors are dropped
// when the stream is not a terminal.
type styles struct {
	ok    lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:    r.NewStyle().Foreground(successColor),
		fail:  r.NewStyle().Bold(true).Foreground(errorColor),
		muted: r.NewStyle().Foreground(mutedColor),
	}
}

func (s styles) status(ok bool) string {
	if ok {
		return s.ok.Render("OK")
	}
	return s.fail.Render("FAILED")
}
