package popup

import (
	"strings"

	"github.com/anticomputer/corfu/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Row is one display row: a candidate with its affixation strings.
type Row struct {
	Prefix     string
	Text       string
	Suffix     string
	Deprecated bool
}

// Styles holds the faces applied to formatted lines.
type Styles struct {
	Current    lipgloss.Style
	Default    lipgloss.Style
	Deprecated lipgloss.Style
	Bar        lipgloss.Style
	Track      lipgloss.Style
}

// DefaultStyles returns the builtin faces.
func DefaultStyles() Styles {
	return Styles{
		Current: lipgloss.NewStyle().Reverse(true),
		Default: lipgloss.NewStyle(),
		Deprecated: lipgloss.NewStyle().Strikethrough(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}),
		Bar:   lipgloss.NewStyle().Reverse(true),
		Track: lipgloss.NewStyle(),
	}
}

// Formatter turns a visible candidate slice into fixed-width lines.
type Formatter struct {
	MinWidth    int
	MaxWidth    int
	ScreenWidth int
	Safety      int
	Styles      Styles
}

// NewFormatter returns a Formatter with the given width bounds and
// default styles. screenWidth 0 means "unbounded".
func NewFormatter(minWidth, maxWidth, screenWidth int) *Formatter {
	return &Formatter{
		MinWidth:    minWidth,
		MaxWidth:    maxWidth,
		ScreenWidth: screenWidth,
		Safety:      4,
		Styles:      DefaultStyles(),
	}
}

// Frame is a fully formatted popup: aligned lines plus geometry.
type Frame struct {
	Lines       []string
	Width       int
	PrefixWidth int
	Height      int
}

// Format renders the visible rows. current is the highlighted row
// index within rows, or -1 when the prompt is selected. barOffset and
// barLength position the scrollbar thumb; hasBar false omits the bar
// column entirely.
func (f *Formatter) Format(rows []Row, current, barOffset, barLength int, hasBar bool) Frame {
	clean := make([]Row, len(rows))
	var pw, cw, sw int
	for i, r := range rows {
		clean[i] = Row{
			Prefix:     utils.CollapseSpace(r.Prefix),
			Text:       utils.CollapseSpace(r.Text),
			Suffix:     utils.CollapseSpace(r.Suffix),
			Deprecated: r.Deprecated,
		}
		pw = max(pw, runewidth.StringWidth(clean[i].Prefix))
		cw = max(cw, runewidth.StringWidth(clean[i].Text))
		sw = max(sw, runewidth.StringWidth(clean[i].Suffix))
	}

	content := pw + cw + sw
	if content < f.MinWidth {
		cw += f.MinWidth - content
		content = f.MinWidth
	}
	width := content
	if f.MaxWidth > 0 {
		width = min(width, f.MaxWidth)
	}
	if f.ScreenWidth > 0 {
		width = min(width, f.ScreenWidth-f.Safety)
	}
	width = max(width, 1)

	lines := make([]string, len(clean))
	for i, r := range clean {
		line := runewidth.FillLeft(r.Prefix, pw)
		line += runewidth.FillRight(r.Text, cw+sw-runewidth.StringWidth(r.Suffix))
		line += r.Suffix
		if runewidth.StringWidth(line) > width {
			line = runewidth.Truncate(line, width, "")
		} else {
			line = runewidth.FillRight(line, width)
		}

		style := f.Styles.Default
		if r.Deprecated {
			style = f.Styles.Deprecated
		}
		if i == current {
			style = f.Styles.Current
		}
		line = style.Render(line)

		if hasBar {
			if i >= barOffset && i < barOffset+barLength {
				line += f.Styles.Bar.Render(" ")
			} else {
				line += f.Styles.Track.Render(" ")
			}
		}
		lines[i] = line
	}

	return Frame{
		Lines:       lines,
		Width:       width,
		PrefixWidth: pw,
		Height:      len(lines),
	}
}

// NoMatch renders the literal "No match" indicator frame used when a
// session lingers with zero candidates.
func (f *Formatter) NoMatch() Frame {
	text := "No match"
	width := max(f.MinWidth, runewidth.StringWidth(text))
	if f.MaxWidth > 0 {
		width = min(width, f.MaxWidth)
	}
	line := f.Styles.Default.Render(runewidth.FillRight(text, width))
	return Frame{Lines: []string{line}, Width: width, Height: 1}
}

// String joins the frame's lines, mainly for debugging output.
func (fr Frame) String() string {
	return strings.Join(fr.Lines, "\n")
}
