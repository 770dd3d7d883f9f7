package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yarlson/go-planner/internal/search"
	"github.com/yarlson/go-planner/internal/taskstore"
)

// Page is everything shown after a change: the derived view and the stats
// of the whole collection.
type Page struct {
	// Tasks is the filtered, sorted view.
	Tasks []taskstore.Task

	// Total is the size of the whole collection.
	Total int

	Stats taskstore.Stats

	// Matcher is the active search, used for highlighting.
	Matcher search.Matcher

	// Progress is the weekly target feedback, if a target is set.
	Progress *Progress

	// Dirty is set when the last save failed.
	Dirty bool
}

// Presenter renders pages. The planner depends only on this interface.
type Presenter interface {
	Present(page Page) error
}

type styles struct {
	heading func(...string) string
	title   func(...string) string
	muted   func(...string) string
	mark    func(string) string
	under   func(...string) string
	near    func(...string) string
	over    func(...string) string
}

func plainStyles() styles {
	id := func(s ...string) string { return strings.Join(s, " ") }
	return styles{
		heading: id,
		title:   id,
		muted:   id,
		mark:    func(s string) string { return "[" + s + "]" },
		under:   id,
		near:    id,
		over:    id,
	}
}

func colorStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	highlight := r.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	return styles{
		heading: r.NewStyle().Bold(true).Underline(true).Render,
		title:   r.NewStyle().Bold(true).Render,
		muted:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#B0B7C3"}).Render,
		mark:    func(s string) string { return highlight.Render(s) },
		under:   r.NewStyle().Foreground(lipgloss.Color("10")).Render,
		near:    r.NewStyle().Foreground(lipgloss.Color("3")).Render,
		over:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render,
	}
}

// TextPresenter writes pages as text.
type TextPresenter struct {
	w     io.Writer
	now   func() time.Time
	bar   func(percent, width int) string
	style styles
}

// TextOption configures a TextPresenter.
type TextOption func(*TextPresenter)

// WithColor turns on lipgloss styling. Without it, output is plain text and
// search matches are marked with brackets.
func WithColor(enabled bool) TextOption {
	return func(p *TextPresenter) {
		if enabled {
			p.style = colorStyles(p.w)
		} else {
			p.style = plainStyles()
		}
	}
}

// WithNow sets the time source used for due labels.
func WithNow(now func() time.Time) TextOption {
	return func(p *TextPresenter) { p.now = now }
}

// WithProgressBar sets the function drawing the weekly target bar.
func WithProgressBar(bar func(percent, width int) string) TextOption {
	return func(p *TextPresenter) { p.bar = bar }
}

// NewTextPresenter returns a plain-text presenter writing to w.
func NewTextPresenter(w io.Writer, opts ...TextOption) *TextPresenter {
	p := &TextPresenter{
		w:     w,
		now:   time.Now,
		style: plainStyles(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Presenter = (*TextPresenter)(nil)

// Present writes the task list followed by the stats.
func (p *TextPresenter) Present(page Page) error {
	var sb strings.Builder
	p.writeTasks(&sb, page)
	sb.WriteString("\n")
	p.writeStats(&sb, page)

	_, err := io.WriteString(p.w, sb.String())
	return err
}

// PresentTasks writes only the task list.
func (p *TextPresenter) PresentTasks(page Page) error {
	var sb strings.Builder
	p.writeTasks(&sb, page)
	_, err := io.WriteString(p.w, sb.String())
	return err
}

// PresentStats writes only the stats.
func (p *TextPresenter) PresentStats(page Page) error {
	var sb strings.Builder
	p.writeStats(&sb, page)
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *TextPresenter) writeTasks(sb *strings.Builder, page Page) {
	searching := page.Matcher.Kind() != search.KindEmpty

	header := fmt.Sprintf("Tasks (%d of %d)", len(page.Tasks), page.Total)
	if searching {
		header += fmt.Sprintf("  search: %s", page.Matcher.Pattern())
		if page.Matcher.Kind() == search.KindInvalid {
			header += " (plain text)"
		}
	}
	sb.WriteString(p.style.heading(header))
	sb.WriteString("\n")

	if len(page.Tasks) == 0 {
		if searching {
			sb.WriteString("No tasks match your search. Try adjusting your search terms.\n")
		} else {
			sb.WriteString("No tasks yet. Add your first task with 'planner add'.\n")
		}
		return
	}

	now := p.now()
	for _, task := range page.Tasks {
		title := search.Highlight(task.Title, page.Matcher, p.style.mark)
		tag := search.Highlight(task.Tag, page.Matcher, p.style.mark)

		_, _ = fmt.Fprintf(sb, "- %s\n", p.style.title(title))

		due := FormatDate(task.DueDate)
		if days, err := DaysUntil(task.DueDate, now); err == nil {
			due += " (" + DueLabel(days) + ")"
		}
		_, _ = fmt.Fprintf(sb, "  Due: %s | Duration: %s | Tag: %s\n", due, FormatDuration(task.Duration), tag)

		meta := fmt.Sprintf("id: %s | created: %s", task.ID, FormatDateTime(task.CreatedAt))
		if task.Edited() {
			meta += " | updated: " + FormatDateTime(task.UpdatedAt)
		}
		_, _ = fmt.Fprintf(sb, "  %s\n", p.style.muted(meta))
	}
}

func (p *TextPresenter) writeStats(sb *strings.Builder, page Page) {
	sb.WriteString(p.style.heading("Stats"))
	sb.WriteString("\n")
	_, _ = fmt.Fprintf(sb, "Total tasks: %d\n", page.Stats.TotalTasks)
	_, _ = fmt.Fprintf(sb, "Total duration: %s\n", FormatDuration(page.Stats.TotalDuration))
	_, _ = fmt.Fprintf(sb, "Top tag: %s\n", page.Stats.TopTag)

	if page.Progress != nil {
		pr := page.Progress
		line := "Weekly target: " + pr.Summary()
		if p.bar != nil {
			line += " " + p.bar(int(pr.Percent), 20)
		}
		sb.WriteString(line + "\n")
		sb.WriteString(p.levelStyle(pr.Level)(pr.Message))
		sb.WriteString("\n")
	}

	if page.Dirty {
		sb.WriteString(p.style.over("Unsaved changes: the last save failed and will be retried."))
		sb.WriteString("\n")
	}
}

func (p *TextPresenter) levelStyle(l Level) func(...string) string {
	switch l {
	case LevelOver:
		return p.style.over
	case LevelNear:
		return p.style.near
	default:
		return p.style.under
	}
}
