package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// LineDisplay renders the widget state as a single redrawn terminal line,
// for headless commands.
type LineDisplay struct {
	*Surface
	out io.Writer
	bar progress.Model
}

func NewLineDisplay(out io.Writer) *LineDisplay {
	return &LineDisplay{
		Surface: NewSurface(),
		out:     out,
		bar: progress.New(
			progress.WithSolidFill(string(playingColor)),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

func (d *LineDisplay) Render() string {
	icon := "▶"
	if d.PlayLabel == "Play" {
		icon = "❚❚"
	}
	if d.RecordLabel == "Stop" {
		icon = errorStyle.Render("●")
	}
	return fmt.Sprintf("%s %s %s %s", icon, clockStyle.Render(d.TimeLabel), d.bar.ViewAs(d.Fraction()), statusStyle.Render(d.Remaining))
}

// Redraw overwrites the current line.
func (d *LineDisplay) Redraw() {
	fmt.Fprintf(d.out, "\r\033[K%s", d.Render())
}

// Done ends the line.
func (d *LineDisplay) Done() {
	fmt.Fprintln(d.out)
}
