package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbellini/effwatch/internal/collector"
	"github.com/mbellini/effwatch/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A855F7"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// Console prints run progress and summaries during report generation.
type Console struct {
	out io.Writer
}

// NewConsole creates a console printer writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Header() {
	fmt.Fprintln(c.out, titleStyle.Render("effwatch · personal efficiency report"))
}

func (c *Console) Periodf(p domain.Period) {
	fmt.Fprintf(c.out, "%s %s\n", sectionStyle.Render(p.Label()+":"), p)
}

func (c *Console) Step(msg string) {
	fmt.Fprintln(c.out, mutedStyle.Render("· "+msg))
}

func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.out, warnStyle.Render("warning: "+msg))
}

func (c *Console) Error(msg string) {
	fmt.Fprintln(c.out, errStyle.Render("error: "+msg))
}

func (c *Console) Buckets(info collector.BucketsInfo) {
	fmt.Fprintf(c.out, "  window: %s\n  afk: %s\n  browser: %s\n  editors: %d\n",
		orNone(info.Window), orNone(info.AFK), orNone(info.Browser), info.EditorCount)
}

func (c *Console) Summary(agg *domain.AggregationResult) {
	fmt.Fprintf(c.out, "  total: %s  active: %s (%.1f%%)  switches: %d\n",
		FormatDuration(agg.TotalDuration), FormatDuration(agg.ActiveDuration),
		agg.ActivityRate(), agg.TotalSwitches)
}

func (c *Console) Saved(path string) {
	fmt.Fprintf(c.out, "%s %s\n", sectionStyle.Render("report saved:"), path)
}

func orNone(s string) string {
	if s == "" {
		return "not found"
	}
	return s
}
