// Package tui renders a read-only Gantt-style view of a completed plan,
// grounded on the Elm-architecture Model/Update/View split and lipgloss
// styling of papapumpkin-quasar's internal/tui package (NewProgram,
// PlanView). The planner has no interactive editing surface, so this
// dashboard only scrolls and quits.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/planning/allocator"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	styleDev    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Model is the dashboard's Elm-architecture state: a scrollable viewport
// over the rendered plan text.
type Model struct {
	viewport viewport.Model
	content  string
	ready    bool
}

// NewModel builds a dashboard for the given plan.
func NewModel(stories []domain.Story, devs []domain.Developer, warnings allocator.Warnings) Model {
	return Model{content: render(stories, devs, warnings)}
}

// Program wraps a tea.Program so callers don't need to import bubbletea.
type Program = tea.Program

// NewProgram creates a BubbleTea program for the dashboard.
func NewProgram(stories []domain.Story, devs []domain.Developer, warnings allocator.Warnings) *Program {
	return tea.NewProgram(NewModel(stories, devs, warnings), tea.WithAltScreen())
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading plan…"
	}
	return m.viewport.View()
}

func render(stories []domain.Story, devs []domain.Developer, warnings allocator.Warnings) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("Backlog Plan — %d stories, %d developers", len(stories), len(devs))))
	b.WriteString("\n\n")

	byDev := make(map[string][]domain.Story)
	unassigned := 0
	for _, s := range stories {
		if !s.IsAllocated() {
			unassigned++
			continue
		}
		byDev[*s.DeveloperID] = append(byDev[*s.DeveloperID], s)
	}

	names := make(map[string]string, len(devs))
	order := make([]string, 0, len(devs))
	for _, d := range devs {
		names[d.ID] = d.Name
		order = append(order, d.ID)
	}
	sort.Strings(order)

	for _, devID := range order {
		list := byDev[devID]
		sort.Slice(list, func(i, j int) bool {
			if list[i].StartDate == nil || list[j].StartDate == nil {
				return list[i].Priority < list[j].Priority
			}
			return list[i].StartDate.Before(*list[j].StartDate)
		})
		b.WriteString(styleDev.Render(fmt.Sprintf("%s (%s)", names[devID], devID)))
		b.WriteString("\n")
		for _, s := range list {
			b.WriteString(formatStoryLine(s))
		}
		b.WriteString("\n")
	}

	if unassigned > 0 {
		b.WriteString(styleWarn.Render(fmt.Sprintf("%d stories unallocated\n\n", unassigned)))
	}

	if len(warnings.Deadlocks) > 0 {
		b.WriteString(styleWarn.Render("Deadlocks:\n"))
		for _, d := range warnings.Deadlocks {
			b.WriteString(fmt.Sprintf("  wave %d: %s\n", d.Wave, strings.Join(d.UnallocatedIDs, ", ")))
		}
		b.WriteString("\n")
	}
	if len(warnings.Idleness) > 0 {
		b.WriteString(styleWarn.Render("Idleness violations:\n"))
		for _, w := range warnings.Idleness {
			b.WriteString(fmt.Sprintf("  %s: %d idle days between %s and %s\n", w.DeveloperID, w.GapDays, w.PrevStoryID, w.NextStoryID))
		}
		b.WriteString("\n")
	}
	if len(warnings.InterWaveGaps) > 0 {
		b.WriteString(styleDim.Render(fmt.Sprintf("%d inter-wave gaps (informational)\n", len(warnings.InterWaveGaps))))
	}

	return b.String()
}

func formatStoryLine(s domain.Story) string {
	start, end := "?", "?"
	if s.StartDate != nil {
		start = s.StartDate.Format("02/01")
	}
	if s.EndDate != nil {
		end = s.EndDate.Format("02/01")
	}
	return fmt.Sprintf("  [%s] %-8s %-30s %s → %s\n", s.Status, s.ID, s.Name, start, end)
}
