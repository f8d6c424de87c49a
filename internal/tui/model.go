package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"agentrpg/internal/engine"
	"agentrpg/internal/presenter"
	"agentrpg/internal/progression"
	"agentrpg/internal/service"
	"agentrpg/internal/ui"
)

type pane int

const (
	paneRoster pane = iota
	paneQuests
)

type boardModel struct {
	ctx     context.Context
	svc     *service.Service
	pres    *presenter.Presenter
	dbPath  string
	watcher *fsnotify.Watcher

	width  int
	height int

	agents []*engine.Agent
	quests []*engine.Quest
	notes  []progression.Notification

	focus    pane
	selAgent int
	selQuest int

	playing *progression.LevelUpEvent

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	agents []*engine.Agent
	quests []*engine.Quest
	notes  []progression.Notification
	err    error
}

type completedMsg struct {
	id  int64
	res *progression.QuestResult
	err error
}

type tickMsg time.Time

type dbChangedMsg struct{}

func newBoardModel(ctx context.Context, svc *service.Service, pres *presenter.Presenter, dbPath string, watcher *fsnotify.Watcher) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		pres:    pres,
		dbPath:  dbPath,
		watcher: watcher,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(), tickCmd()}
	if m.watcher != nil {
		cmds = append(cmds, m.watchCmd())
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		agents, err := m.svc.Roster(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		quests, err := m.svc.Quests().ListAll(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		notes, err := m.svc.Notices().ListActive(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{agents: agents, quests: quests, notes: notes}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteQuest(m.ctx, id, engine.QuestOutcome{TeamPerformance: 1.0})
		return completedMsg{id: id, res: res, err: err}
	}
}

// watchCmd blocks on the filesystem watcher until the database file
// changes, then re-arms from Update. Writes by other deck processes show
// up as a refresh.
func (m boardModel) watchCmd() tea.Cmd {
	return func() tea.Msg {
		base := filepath.Base(m.dbPath)
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return dbChangedMsg{}
				}
			case _, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.agents = msg.agents
		m.quests = msg.quests
		m.notes = msg.notes
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil

	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		total := 0
		for _, xp := range msg.res.Awards {
			total += xp
		}
		m.lastLog = fmt.Sprintf("Quest %d complete: +%d XP across %d agents", msg.id, total, len(msg.res.Awards))
		return m, m.loadCmd()

	case dbChangedMsg:
		return m, tea.Batch(m.loadCmd(), m.watchCmd())

	case tickMsg:
		// Playback pacing belongs to the presenter: a banner stays up
		// while its agent's effect window is open, then the next queued
		// event is popped (which re-arms the window).
		if m.playing != nil && !m.pres.Animating(m.playing.AgentID) {
			m.playing = nil
		}
		if m.playing == nil {
			if ev, ok := m.pres.NextLevelUpEvent(); ok {
				m.playing = &ev
			}
		}
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "tab":
			if m.focus == paneRoster {
				m.focus = paneQuests
			} else {
				m.focus = paneRoster
			}
			return m, nil
		case "up", "k":
			m.move(-1)
			return m, nil
		case "down", "j":
			m.move(1)
			return m, nil
		case "c", " ", "enter":
			if m.focus != paneQuests {
				return m, nil
			}
			if m.selQuest < 0 || m.selQuest >= len(m.quests) {
				return m, nil
			}
			q := m.quests[m.selQuest]
			if q.Status == "done" {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing quest %d…", q.ID)
			return m, m.completeCmd(q.ID)
		}
	}
	return m, nil
}

func (m *boardModel) move(delta int) {
	switch m.focus {
	case paneRoster:
		m.selAgent += delta
	case paneQuests:
		m.selQuest += delta
	}
	m.clampSelection()
}

func (m *boardModel) clampSelection() {
	if m.selAgent >= len(m.agents) {
		m.selAgent = len(m.agents) - 1
	}
	if m.selAgent < 0 {
		m.selAgent = 0
	}
	if m.selQuest >= len(m.quests) {
		m.selQuest = len(m.quests) - 1
	}
	if m.selQuest < 0 {
		m.selQuest = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	left := m.renderRoster()
	right := m.renderQuests() + "\n\n" + m.renderNotices()
	footer := m.renderFooter()

	leftW := 42
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 24 {
			leftW = 24
		}
	}

	linesLeft := strings.Split(left, "\n")
	linesRight := strings.Split(right, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	title := ui.Heading(ui.IconAgent, "Deck — Agent Progression")
	if m.playing != nil {
		ev := m.playing
		banner := fmt.Sprintf("%s  %s %s reached level %d!", ui.BadgeLevelUp, ui.IconUp, ev.AgentName, ev.NewLevel)
		if len(ev.UnlockedSkills) > 0 {
			banner += "  " + ui.Gold.Render(ui.IconSkill+" "+strings.Join(ev.UnlockedSkills, ", "))
		}
		return title + "\n" + banner
	}
	return title
}

func (m boardModel) renderRoster() string {
	lines := []string{ui.H2.Render("Roster")}
	if m.loading {
		return lines[0] + "\n" + "Loading…"
	}
	if len(m.agents) == 0 {
		return lines[0] + "\n" + ui.Muted.Render("(no agents — run `deck roster` to seed)")
	}
	for i, a := range m.agents {
		cursor := "  "
		if m.focus == paneRoster && i == m.selAgent {
			cursor = "> "
		}
		name := a.Name
		if m.pres.Animating(a.ID) {
			name = ui.Gold.Render(name + " " + ui.IconSparkle)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s  L%d %s",
			cursor, ui.ClassIcon(string(a.Class)), name, a.Level, ui.XPBar(a.XP, a.XPToNext, 12)))
	}

	if m.selAgent >= 0 && m.selAgent < len(m.agents) {
		a := m.agents[m.selAgent]
		lines = append(lines, "")
		lines = append(lines, ui.H2.Render(a.Name))
		lines = append(lines, fmt.Sprintf("  %s %s  %s %d",
			ui.Key.Render("class:"), a.Class, ui.Key.Render("level:"), a.Level))
		lines = append(lines, fmt.Sprintf("  INT %d  CRE %d  REL %d  SPD %d  LEA %d",
			a.Stats.Intelligence, a.Stats.Creativity, a.Stats.Reliability, a.Stats.Speed, a.Stats.Leadership))
		if len(a.Skills) > 0 {
			lines = append(lines, "  "+ui.Muted.Render("skills: "+strings.Join(a.Skills, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderQuests() string {
	lines := []string{ui.H2.Render("Quests")}
	if len(m.quests) == 0 {
		lines = append(lines, ui.Muted.Render("(empty)"))
		return strings.Join(lines, "\n")
	}
	for i, q := range m.quests {
		cursor := "  "
		if m.focus == paneQuests && i == m.selQuest {
			cursor = "> "
		}
		status := ui.Warn.Render(q.Status)
		if q.Status == "done" {
			status = ui.Good.Render("done")
		}
		lines = append(lines, fmt.Sprintf("%s%d %s [%s/%s] %s  +%d XP",
			cursor, q.ID, q.Title, q.Difficulty, q.Category, status, q.Reward.XP))
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderNotices() string {
	lines := []string{ui.H2.Render("Notices")}
	if len(m.notes) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
		return strings.Join(lines, "\n")
	}
	shown := m.notes
	if len(shown) > 6 {
		shown = shown[:6]
	}
	for _, n := range shown {
		lines = append(lines, fmt.Sprintf("%s %s %s — %s",
			n.Icon, ui.PriorityText(string(n.Priority)), n.Title, ui.Muted.Render(n.Message)))
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderFooter() string {
	keys := ui.Muted.Render("tab: pane  ↑/↓ j/k: move  c/space: complete quest  r: refresh  q: quit")
	status := m.lastLog
	if m.pres.State().Processing {
		status = ui.Warn.Render("processing…") + "  " + status
	}
	return keys + "\n" + status
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
