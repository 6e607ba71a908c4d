// Package tui is the interactive idea dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"ideavault/internal/controller"
	"ideavault/internal/domain"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
	modeForm
)

const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldCategory
	fieldCount
)

type (
	loadedMsg struct {
		ideas []domain.Idea
		err   error
	}
	deletedMsg struct {
		ideas []domain.Idea
		err   error
	}
	submittedMsg struct {
		idea  domain.Idea
		ideas []domain.Idea
		err   error
	}
	assistMsg struct {
		text string
		err  error
	}
)

// Model drives a controller.Dashboard. tea.Cmds only perform store and
// planner I/O on copies of the state they need; every controller mutation
// happens in Update, on the program goroutine that also renders View.
type Model struct {
	ctx  context.Context
	dash *controller.Dashboard
	rec  *controller.Recorder
	user string

	mode   mode
	cursor int
	busy   bool

	search    textinput.Model
	form      []textinput.Model
	formFocus int

	assist string
	width  int
	height int
}

// New builds the dashboard model. rec must be the notifier the dashboard
// controllers were built with; its latest entry is shown in the status bar.
func New(ctx context.Context, dash *controller.Dashboard, rec *controller.Recorder, user string) Model {
	search := textinput.New()
	search.Placeholder = "Search ideas..."
	search.Prompt = "/ "
	search.CharLimit = 120

	form := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{"Title", "Description", "Tags (comma separated)", "Category"}
	for i := range form {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = "> "
		form[i] = ti
	}
	return Model{
		ctx:    ctx,
		dash:   dash,
		rec:    rec,
		user:   user,
		search: search,
		form:   form,
		width:  80,
		height: 24,
	}
}

// Run starts the dashboard on the alternate screen and blocks until it exits.
func Run(ctx context.Context, dash *controller.Dashboard, rec *controller.Recorder, user string) error {
	p := tea.NewProgram(New(ctx, dash, rec, user), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	ctx, list := m.ctx, m.dash.List
	return func() tea.Msg {
		ideas, err := list.Fetch(ctx)
		return loadedMsg{ideas: ideas, err: err}
	}
}

func (m Model) deleteCmd(idea domain.Idea) tea.Cmd {
	ctx, detail, list := m.ctx, m.dash.Detail, m.dash.List
	return func() tea.Msg {
		if err := detail.Remove(ctx, idea); err != nil {
			return deletedMsg{err: err}
		}
		ideas, _ := list.Fetch(ctx)
		return deletedMsg{ideas: ideas}
	}
}

func (m Model) submitCmd(draft controller.Draft) tea.Cmd {
	ctx, create, list := m.ctx, m.dash.Create, m.dash.List
	return func() tea.Msg {
		idea, err := create.Send(ctx, draft)
		if err != nil {
			return submittedMsg{err: err}
		}
		ideas, _ := list.Fetch(ctx)
		return submittedMsg{idea: idea, ideas: ideas}
	}
}

func (m Model) assistCmd(idea domain.Idea) tea.Cmd {
	ctx, detail := m.ctx, m.dash.Detail
	return func() tea.Msg {
		text, err := detail.Assist(ctx, idea, controller.AssistParams{})
		return assistMsg{text: text, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case loadedMsg:
		m.busy = false
		m.dash.List.Replace(msg.ideas)
		m.clampCursor()
		return m, nil
	case deletedMsg:
		m.busy = false
		if msg.err == nil {
			m.dash.Detail.Close()
			m.dash.List.Replace(msg.ideas)
			m.mode = modeList
			m.assist = ""
			m.clampCursor()
		}
		return m, nil
	case submittedMsg:
		m.busy = false
		if msg.err == nil {
			m.resetForm()
			m.dash.List.Replace(msg.ideas)
			m.mode = modeList
			m.clampCursor()
		}
		return m, nil
	case assistMsg:
		m.busy = false
		if msg.err == nil {
			m.assist = msg.text
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		case modeForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, tea.Quit
	case "left", "h":
		m.shiftCategory(-1)
	case "right", "l":
		m.shiftCategory(1)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.dash.List.Visible())-1 {
			m.cursor++
		}
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.dash.List.Filter())
		return m, m.search.Focus()
	case "enter":
		visible := m.dash.List.Visible()
		if m.cursor < len(visible) {
			m.dash.Detail.Select(visible[m.cursor])
			m.assist = ""
			m.mode = modeDetail
		}
	case "n":
		m.resetForm()
		m.mode = modeForm
		return m, m.form[fieldTitle].Focus()
	case "r":
		m.busy = true
		return m, m.loadCmd()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.dash.List.SetFilter("")
		m.mode = modeList
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.dash.List.SetFilter(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.dash.Detail.Close()
		m.assist = ""
		m.mode = modeList
	case "d":
		if idea, ok := m.dash.Detail.Selected(); ok {
			m.busy = true
			return m, m.deleteCmd(idea)
		}
	case "a":
		if idea, ok := m.dash.Detail.Selected(); ok {
			m.busy = true
			return m, m.assistCmd(idea)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetForm()
		m.mode = modeList
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.formFocus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.formFocus + fieldCount - 1) % fieldCount)
	case "enter", "ctrl+s":
		if msg.String() == "enter" && m.formFocus < fieldCount-1 {
			return m, m.focusField(m.formFocus + 1)
		}
		m.syncDraft()
		m.busy = true
		return m, m.submitCmd(m.dash.Create.Draft)
	}
	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	m.syncDraft()
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.form[m.formFocus].Blur()
	m.formFocus = i
	return m.form[i].Focus()
}

func (m *Model) syncDraft() {
	d := &m.dash.Create.Draft
	d.Title = m.form[fieldTitle].Value()
	d.Description = m.form[fieldDescription].Value()
	d.Tags = m.form[fieldTags].Value()
	d.Category = m.form[fieldCategory].Value()
}

func (m *Model) resetForm() {
	for i := range m.form {
		m.form[i].SetValue("")
		m.form[i].Blur()
	}
	m.formFocus = fieldTitle
	m.dash.Create.Reset()
}

func (m *Model) shiftCategory(delta int) {
	cats := controller.Categories()
	idx := 0
	for i, c := range cats {
		if c == m.dash.List.Category() {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(cats)) % len(cats)
	_ = m.dash.List.SetCategory(cats[idx])
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.dash.List.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	header := titleStyle.Render("IdeaVault") + faintStyle.Render("  signed in as "+m.user)
	var body string
	switch m.mode {
	case modeDetail:
		body = m.viewDetail()
	case modeForm:
		body = m.viewForm()
	default:
		body = m.viewList()
	}
	return strings.Join([]string{header, body, m.viewStatus(), faintStyle.Render(m.help())}, "\n\n")
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(controller.Categories()))
	for _, c := range controller.Categories() {
		if c == m.dash.List.Category() {
			tabs = append(tabs, activeTabStyle.Render(string(c)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(c)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n")
	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	} else if f := m.dash.List.Filter(); f != "" {
		b.WriteString(faintStyle.Render("filter: " + f))
		b.WriteString("\n")
	}
	visible := m.dash.List.Visible()
	if len(visible) == 0 {
		b.WriteString("\n")
		b.WriteString(faintStyle.Render("No ideas found."))
		return b.String()
	}
	for i, idea := range visible {
		marker := "  "
		title := idea.Title
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			title = cursorStyle.Render(title)
		}
		line := fmt.Sprintf("\n%s%s  %s", marker, title, statusStyle(idea.Status).Render(string(idea.Status)))
		if len(idea.Tags) > 0 {
			line += faintStyle.Render("  #" + strings.Join(idea.Tags, " #"))
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m Model) viewDetail() string {
	idea, ok := m.dash.Detail.Selected()
	if !ok {
		return faintStyle.Render("No idea selected.")
	}
	rows := []string{
		titleStyle.Render(idea.Title),
		"",
		idea.Description,
		"",
		labelStyle.Render("Category") + emptyAsDash(idea.Category),
		labelStyle.Render("Priority") + emptyAsDash(idea.Priority),
		labelStyle.Render("Status") + statusStyle(idea.Status).Render(string(idea.Status)),
		labelStyle.Render("Created") + createdAge(idea.CreatedAt) + faintStyle.Render(" by "+idea.CreatedBy),
	}
	if tags := m.dash.Detail.Tags(); len(tags) > 0 {
		rendered := make([]string, 0, len(tags))
		for _, t := range tags {
			rendered = append(rendered, tagStyle.Render(t))
		}
		rows = append(rows, labelStyle.Render("Tags")+strings.Join(rendered, " "))
	}
	out := paneStyle.Width(m.paneWidth()).Render(strings.Join(rows, "\n"))
	if m.busy {
		out += "\n\n" + faintStyle.Render("Working...")
	}
	if m.assist != "" {
		out += "\n\n" + RenderMarkdown(m.assist, m.paneWidth())
	}
	return out
}

func (m Model) viewForm() string {
	rows := []string{titleStyle.Render("New idea")}
	for i := range m.form {
		rows = append(rows, m.form[i].View())
	}
	p := m.dash.Create.Preview()
	preview := []string{
		labelStyle.Render("Title") + emptyAsDash(p.Title),
		labelStyle.Render("Description") + emptyAsDash(p.Description),
		labelStyle.Render("Tags") + emptyAsDash(p.Tags.String()),
		labelStyle.Render("Priority") + p.Priority,
	}
	rows = append(rows, "", paneStyle.Width(m.paneWidth()).Render(strings.Join(preview, "\n")))
	return strings.Join(rows, "\n")
}

func (m Model) viewStatus() string {
	if m.rec == nil {
		return ""
	}
	n, ok := m.rec.Last()
	if !ok {
		return ""
	}
	return NotificationLine(n)
}

func (m Model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to filter  enter: keep  esc: clear"
	case modeDetail:
		return "a: assist  d: delete  esc: back"
	case modeForm:
		return "tab: next field  enter: next/submit  ctrl+s: submit  esc: cancel"
	default:
		return "←/→: category  ↑/↓: move  enter: open  /: search  n: new  r: refresh  q: quit"
	}
}

func (m Model) paneWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	if w > 100 {
		w = 100
	}
	return w
}

func emptyAsDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func createdAge(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return emptyAsDash(ts)
	}
	return humanize.Time(t)
}
