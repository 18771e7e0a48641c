package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/config"
	"tasklist/internal/kv"
	"tasklist/internal/task"
	"tasklist/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeConfirm
)

const (
	fieldTitle = iota
	fieldDescription
)

// gate is the approval step for delete controls. The confirm prompt arms it
// and the control consumes the answer, so an unarmed gate refuses.
type gate struct {
	armed bool
}

func (g *gate) Approve(string) bool {
	ok := g.armed
	g.armed = false
	return ok
}

type Model struct {
	store *task.Store
	list  *view.Recorder
	gate  *gate
	cfg   config.Config
	st    styles

	cursor     int
	mode       mode
	title      textinput.Model
	desc       textinput.Model
	field      int
	status     string
	pendingDel *view.Node
}

// New builds the model, its store and the initial render.
func New(backend kv.Backend, cfg config.Config, logger *slog.Logger) (Model, error) {
	list := view.NewRecorder()
	g := &gate{}
	store, err := task.New(list, backend, task.Options{
		Key:      cfg.StorageKey,
		Filter:   task.ParseFilter(cfg.DefaultFilter),
		Approver: g,
		Logger:   logger,
	})
	if err != nil {
		return Model{}, err
	}
	store.Render()

	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 256
	title.Width = 40

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 1024
	desc.Width = 40

	status := fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete)
	if !store.Available() {
		status = "Storage unavailable: tasks will not be saved this session."
	}

	return Model{
		store:  store,
		list:   list,
		gate:   g,
		cfg:    cfg,
		st:     newStyles(),
		title:  title,
		desc:   desc,
		status: status,
		mode:   modeList,
	}, nil
}

func Run(backend kv.Backend, cfg config.Config, logger *slog.Logger) error {
	m, err := New(backend, cfg, logger)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeConfirm:
			return m.updateDeleteConfirm(msg.String())
		case modeAdd:
			return m.updateAddMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 20
		if w < 10 {
			w = 10
		}
		m.title.Width = w
		m.desc.Width = w
	}
	return m, nil
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m = m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.NextField, "shift+tab":
		return m.focusField(1 - m.field), nil
	case m.cfg.Keys.Confirm:
		created, ok := m.store.AddTask(m.title.Value(), m.desc.Value())
		if !ok {
			m.status = "Title cannot be empty"
			return m.focusField(fieldTitle), nil
		}
		m = m.closeForm()
		m.cursor = clampCursor(0, m.list.Len())
		m.status = fmt.Sprintf("Added %q", created.Title)
		return m, nil
	default:
		var cmd tea.Cmd
		if m.field == fieldTitle {
			m.title, cmd = m.title.Update(msg)
		} else {
			m.desc, cmd = m.desc.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) focusField(field int) Model {
	m.field = field
	if field == fieldTitle {
		m.desc.Blur()
		m.title.Focus()
	} else {
		m.title.Blur()
		m.desc.Focus()
	}
	return m
}

func (m Model) closeForm() Model {
	m.title.SetValue("")
	m.desc.SetValue("")
	m.title.Blur()
	m.desc.Blur()
	m.field = fieldTitle
	m.mode = modeList
	return m
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, m.list.Len())
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, m.list.Len())
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m = m.focusField(fieldTitle)
		m.status = "Add mode: type a title, tab for description, enter to save"
	case m.cfg.Keys.Toggle:
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !n.Toggle() {
			m.status = "Task no longer exists"
		} else if n.Completed {
			m.status = fmt.Sprintf("Marked %q pending", n.Title)
		} else {
			m.status = fmt.Sprintf("Marked %q done", n.Title)
		}
		m.cursor = clampCursor(m.cursor, m.list.Len())
	case m.cfg.Keys.Delete:
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirm
		m.pendingDel = &n
		m.status = fmt.Sprintf("Delete %q? y/n", n.Title)
	case m.cfg.Keys.CycleFilter:
		return m.setFilter(m.store.Filter().Next()), nil
	case m.cfg.Keys.FilterAll:
		return m.setFilter(task.FilterAll), nil
	case m.cfg.Keys.FilterPending:
		return m.setFilter(task.FilterPending), nil
	case m.cfg.Keys.FilterCompleted:
		return m.setFilter(task.FilterCompleted), nil
	}
	return m, nil
}

func (m Model) setFilter(f task.Filter) Model {
	m.store.SetFilter(f)
	m.cursor = clampCursor(m.cursor, m.list.Len())
	m.status = "Showing " + string(f.Effective()) + " tasks"
	return m
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.mode = modeList
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.mode = modeList
			return m, nil
		}
		m.gate.armed = true
		if m.pendingDel.Delete() {
			m.status = fmt.Sprintf("Deleted %q", m.pendingDel.Title)
		} else {
			m.status = "Task no longer exists"
		}
		m.gate.armed = false
		m.cursor = clampCursor(m.cursor, m.list.Len())
		m.mode = modeList
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

// selected returns the task node under the cursor.
func (m Model) selected() (view.Node, bool) {
	n, ok := m.list.At(m.cursor)
	if !ok || n.Kind != view.KindTask {
		return view.Node{}, false
	}
	return n, true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.st.Title.Render("Tasks"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	c := m.store.Counts()
	b.WriteString(m.st.Counts.Render(fmt.Sprintf("  %d total • %d pending • %d done", c.Total, c.Pending, c.Completed)))
	b.WriteString("\n\n")

	b.WriteString(m.renderTaskList())

	switch m.mode {
	case modeAdd:
		b.WriteString("\n")
		b.WriteString(m.renderForm())
	case modeConfirm:
		b.WriteString("\n")
		if m.pendingDel != nil {
			b.WriteString(m.st.ConfirmBox.Render(fmt.Sprintf("Delete %q?\n[y] yes  [n] no", m.pendingDel.Title)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.st.Status.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.st.Help.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderTabs() string {
	active := m.store.Filter().Effective()
	labels := map[task.Filter]string{
		task.FilterAll:       m.cfg.Keys.FilterAll + " All",
		task.FilterPending:   m.cfg.Keys.FilterPending + " Pending",
		task.FilterCompleted: m.cfg.Keys.FilterCompleted + " Completed",
	}
	parts := make([]string, 0, len(labels))
	for _, f := range task.Filters() {
		if f == active {
			parts = append(parts, m.st.TabActive.Render(labels[f]))
		} else {
			parts = append(parts, m.st.Tab.Render(labels[f]))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, n := range m.list.Nodes() {
		if n.Kind == view.KindPlaceholder {
			b.WriteString(m.st.Placeholder.Render(n.Text))
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if m.cursor == i && m.mode != modeAdd {
			cursor = m.st.Cursor.Render("> ")
		}

		checkbox := "[ ]"
		title := m.st.TaskTitle.Render(n.Title)
		if n.Completed {
			checkbox = "[x]"
			title = m.st.TaskDone.Render(n.Title)
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, checkbox, title))
		if n.Description != "" {
			b.WriteString("      ")
			b.WriteString(m.st.Description.Render(n.Description))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderForm() string {
	label := func(name string, field int) string {
		if m.field == field {
			return m.st.FormActive.Render(name)
		}
		return m.st.FormLabel.Render(name)
	}
	var b strings.Builder
	b.WriteString(label("Title      ", fieldTitle))
	b.WriteString(" ")
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(label("Description", fieldDescription))
	b.WriteString(" ")
	b.WriteString(m.desc.View())
	b.WriteString("\n")
	return b.String()
}

func renderHelp(k config.Keymap) string {
	toggle := k.Toggle
	if toggle == " " {
		toggle = "space"
	}
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s delete • %s/%s/%s or %s filter • %s quit",
		k.Up, k.Down, k.Add, toggle, k.Delete, k.FilterAll, k.FilterPending, k.FilterCompleted, k.CycleFilter, k.Quit)
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
