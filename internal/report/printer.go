// Package report renders schedule results as styled terminal tables.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/planiflow/internal/project"
)

// Printer writes reports to a writer. Colors are only emitted when the
// writer is a terminal that supports them.
type Printer struct {
	w       io.Writer
	r       *lipgloss.Renderer
	palette Palette
	dates   project.DateFormat
	today   time.Time
}

// Option configures a Printer.
type Option func(*Printer)

// WithPalette overrides DefaultPalette.
func WithPalette(p Palette) Option {
	return func(pr *Printer) { pr.palette = p }
}

// WithDateFormat sets the layout dates are printed in.
func WithDateFormat(f project.DateFormat) Option {
	return func(pr *Printer) { pr.dates = f }
}

// WithToday sets the date statuses are classified against. The default is
// the current day.
func WithToday(t time.Time) Option {
	return func(pr *Printer) { pr.today = t }
}

// New returns a Printer writing to w.
func New(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		w:       w,
		r:       lipgloss.NewRenderer(w),
		palette: DefaultPalette(),
		today:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Title writes a bold heading line.
func (p *Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.w, p.r.NewStyle().Bold(true).Foreground(colorHeader).Render(fmt.Sprintf(format, args...)))
}

// Note writes a muted line.
func (p *Printer) Note(format string, args ...any) {
	fmt.Fprintln(p.w, p.r.NewStyle().Foreground(colorMuted).Render(fmt.Sprintf(format, args...)))
}

// Problems writes one warning line per error.
func (p *Printer) Problems(errs []error) {
	style := p.r.NewStyle().Foreground(p.palette.Overdue)
	for _, err := range errs {
		fmt.Fprintln(p.w, style.Render("! "+err.Error()))
	}
}

// cellStyle picks the style of a data cell. A nil cellStyle leaves cells
// unstyled.
type cellStyle func(row, col int) lipgloss.Style

func (p *Printer) table(headers []string, rows [][]string, cell cellStyle) {
	header := p.r.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	base := p.r.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.r.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if cell != nil {
				return cell(row, col).Padding(0, 1)
			}
			return base
		})
	fmt.Fprintln(p.w, t.Render())
}

func (p *Printer) date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	s := project.FormatDate(t, p.dates)
	s = strings.TrimSuffix(s, "T00:00:00")
	return strings.TrimSuffix(s, " 00:00:00")
}

// indent prefixes name with two spaces per outline level.
func indent(name string, level int) string {
	return strings.Repeat("  ", level) + name
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
