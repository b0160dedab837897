// Package dash is the interactive terminal dashboard: live lead list,
// notification feed, agent stage and channel health, fed by a
// coordinator subscription.
package dash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sophiie/orbit/pkg/channel"
	"github.com/sophiie/orbit/pkg/coordinator"
	"github.com/sophiie/orbit/pkg/leads"
	"github.com/sophiie/orbit/pkg/stage"
	"github.com/sophiie/orbit/tui/theme"
)

type snapMsg coordinator.Snapshot

type subClosedMsg struct{}

// Model is the bubbletea model for the dashboard.
type Model struct {
	coord   *coordinator.Coordinator
	updates <-chan coordinator.Snapshot
	stopSub func()

	snap    coordinator.Snapshot
	spinner spinner.Model
	cursor  int
	width   int
	height  int
}

// New builds a dashboard model subscribed to the coordinator.
func New(coord *coordinator.Coordinator) Model {
	updates, stop := coord.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DefaultTheme.Accent

	return Model{
		coord:   coord,
		updates: updates,
		stopSub: stop,
		snap:    coord.Snapshot(),
		spinner: sp,
	}
}

func waitForSnapshot(updates <-chan coordinator.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return subClosedMsg{}
		}
		return snapMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForSnapshot(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopSub()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.snap.Leads)-1 {
				m.cursor++
			}
		case "r":
			m.coord.RequestSync()
		case "m":
			m.coord.MarkAllNotificationsRead()
		case "c":
			m.coord.ClearPendingPush()
		case "a":
			if lead, ok := m.selectedLead(); ok {
				m.coord.SendDecision(lead.ID, "approved")
			}
		case "x":
			if lead, ok := m.selectedLead(); ok {
				m.coord.SendDecision(lead.ID, "rejected")
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapMsg:
		m.snap = coordinator.Snapshot(msg)
		if m.cursor >= len(m.snap.Leads) && m.cursor > 0 {
			m.cursor = len(m.snap.Leads) - 1
		}
		return m, waitForSnapshot(m.updates)

	case subClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) selectedLead() (leads.Lead, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Leads) {
		return leads.Lead{}, false
	}
	return m.snap.Leads[m.cursor], true
}

func (m Model) View() string {
	t := theme.DefaultTheme
	var b strings.Builder

	b.WriteString(t.Title.Render("ORBIT"))
	b.WriteString("  ")
	b.WriteString(m.renderStage())
	b.WriteString("  ")
	b.WriteString(m.renderChannel("session", m.snap.SessionStatus))
	b.WriteString(" ")
	b.WriteString(m.renderChannel("leads", m.snap.LeadsStatus))
	if m.snap.ServerStatus == "thinking" {
		b.WriteString("  " + m.spinner.View() + t.Muted.Render("thinking"))
	}
	b.WriteString("\n\n")

	if m.snap.PendingPush != nil {
		banner := fmt.Sprintf(" New enquiry: %s · %s ", m.snap.PendingPush.Name, m.snap.PendingPush.Subject)
		b.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Colors.Text).
			Background(t.Colors.Border).
			Render(banner))
		b.WriteString(t.Muted.Render("  (c to dismiss)"))
		b.WriteString("\n\n")
	}

	b.WriteString(t.Title.Render("Enquiries"))
	b.WriteString("\n")
	if len(m.snap.Leads) == 0 {
		b.WriteString(t.Muted.Render("  no enquiries yet"))
		b.WriteString("\n")
	}
	for i, lead := range m.snap.Leads {
		line := fmt.Sprintf("%s  %-22s %-18s %s",
			m.renderLeadStatus(lead.Status),
			truncate(lead.Name, 22),
			truncate(lead.Subject, 18),
			t.Muted.Render(lead.ReceivedAt))
		if lead.TotalEstimate > 0 {
			line += t.Success.Render(fmt.Sprintf("  $%.0f", lead.TotalEstimate))
		}
		if i == m.cursor {
			line = t.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	unread := 0
	for _, n := range m.snap.Notifications {
		if !n.Read {
			unread++
		}
	}
	b.WriteString("\n")
	b.WriteString(t.Title.Render("Notifications"))
	if unread > 0 {
		b.WriteString(t.Warning.Render(fmt.Sprintf(" (%d unread)", unread)))
	}
	b.WriteString("\n")
	shown := m.snap.Notifications
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, n := range shown {
		marker := t.Accent.Render("•")
		if n.Read {
			marker = t.Muted.Render("•")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", marker, n.Title))
	}

	b.WriteString("\n")
	b.WriteString(t.Muted.Render("j/k move · a approve · x reject · m read all · r resync · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStage() string {
	t := theme.DefaultTheme
	label := string(m.snap.AgentStage)
	switch m.snap.AgentStage {
	case stage.Idle:
		return t.Muted.Render(label)
	case stage.Completed:
		return t.Success.Render(label)
	default:
		if m.snap.CallActive {
			return t.Warning.Render(label + " (on call)")
		}
		return t.Accent.Render(label)
	}
}

func (m Model) renderChannel(name string, status channel.Status) string {
	t := theme.DefaultTheme
	switch status {
	case channel.StatusConnected:
		return t.Success.Render("●") + t.Muted.Render(" "+name)
	case channel.StatusConnecting:
		return t.Warning.Render("◌") + t.Muted.Render(" "+name)
	case channel.StatusError:
		return t.Error.Render("✗") + t.Muted.Render(" "+name)
	default:
		return t.Muted.Render("○ " + name)
	}
}

func (m Model) renderLeadStatus(status leads.CoarseStatus) string {
	t := theme.DefaultTheme
	switch status {
	case leads.StatusResponded:
		return t.Success.Render("[responded]")
	case leads.StatusClosed:
		return t.Muted.Render("[closed]   ")
	case leads.StatusPending:
		return t.Warning.Render("[pending]  ")
	default:
		return t.Accent.Render("[new]      ")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
