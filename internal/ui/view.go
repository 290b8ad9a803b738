package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/rhc/internal/bindings"
	"github.com/unkn0wn-root/rhc/internal/session"
	"github.com/unkn0wn-root/rhc/internal/ui/scroll"
	"github.com/unkn0wn-root/rhc/internal/vars"
)

const (
	cursorMark = "> "
	blankMark  = "  "
	ellipsis   = "…"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var rows []string
	var prompt string
	switch m.sess.Phase() {
	case session.PhaseSelecting:
		rows = m.selectionRows()
		prompt = m.selectionPrompt()
	case session.PhaseBinding:
		if m.sess.PromptMode() == session.ModeHistory {
			rows = m.historyRows()
		} else {
			rows = m.resolutionRows()
		}
		prompt = m.bindingPrompt()
	default:
		return ""
	}

	h := m.listHeight()
	if len(rows) > h {
		rows = rows[len(rows)-h:]
	}
	var b strings.Builder
	for i := len(rows); i < h; i++ {
		b.WriteByte('\n')
	}
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(prompt)
	b.WriteByte('\n')
	b.WriteString(m.help.ShortHelpView(m.helpBindings()))
	return b.String()
}

// selectionRows returns the visible definitions top to bottom, best match
// last.
func (m Model) selectionRows() []string {
	view := m.sess.View()
	start, end := scroll.Window(m.listOff, m.listHeight(), len(view))
	idWidth := 0
	for _, item := range view[start:end] {
		if w := runewidth.StringWidth(item.Candidate.ID); w > idWidth {
			idWidth = w
		}
	}
	maxID := m.width / 2
	if idWidth > maxID {
		idWidth = maxID
	}

	rows := make([]string, 0, end-start)
	for i := end - 1; i >= start; i-- {
		rows = append(rows, m.selectionRow(view[i], i == m.sess.Highlight(), idWidth))
	}
	return rows
}

func (m Model) selectionRow(item session.Item, selected bool, idWidth int) string {
	c := item.Candidate
	base := m.theme.Item
	if c.Err != nil {
		base = m.theme.ItemBroken
	}
	if selected {
		base = m.theme.ItemSelected
	}
	mark := blankMark
	if selected {
		mark = cursorMark
	}

	id := runewidth.Truncate(c.ID, idWidth, ellipsis)
	label := highlightMatches(id, item.Matched, base, m.theme.ItemMatch)
	pad := strings.Repeat(" ", idWidth-runewidth.StringWidth(id))

	desc := c.Description
	if c.Err != nil {
		desc = c.Err.Error()
	}
	room := m.width - len(mark) - idWidth - 2
	line := base.Render(mark) + label + pad
	if room > 0 && desc != "" {
		line += "  " + m.theme.Description.Render(runewidth.Truncate(oneLine(desc), room, ellipsis))
	}
	return line
}

// highlightMatches styles the matched byte positions of s. Positions past
// the end of s (matches in the URL part of the search text) are ignored.
func highlightMatches(s string, matched []int, base, match lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	set := make(map[int]struct{}, len(matched))
	for _, idx := range matched {
		set[idx] = struct{}{}
	}
	var b strings.Builder
	for i, r := range s {
		if _, ok := set[i]; ok {
			b.WriteString(base.Inherit(match).Render(string(r)))
			continue
		}
		b.WriteString(base.Render(string(r)))
	}
	return b.String()
}

func (m Model) historyRows() []string {
	items := m.sess.HistoryView()
	start, end := scroll.Window(m.histOff, m.listHeight(), len(items))
	rows := make([]string, 0, end-start)
	for i := end - 1; i >= start; i-- {
		style := m.theme.Item
		mark := blankMark
		if i == m.sess.HistoryHighlight() {
			style = m.theme.ItemSelected
			mark = cursorMark
		}
		value := runewidth.Truncate(oneLine(items[i]), m.width-len(mark), ellipsis)
		rows = append(rows, style.Render(mark+value))
	}
	return rows
}

// resolutionRows lists every required variable with its current binding.
func (m Model) resolutionRows() []string {
	var rows []string
	if c := m.sess.Chosen(); c != nil {
		rows = append(rows, m.theme.Muted.Render(c.ID))
	}
	current := m.sess.Current()
	for _, res := range m.sess.Resolutions() {
		rows = append(rows, m.resolutionRow(res, res.Name == current))
	}
	return rows
}

func (m Model) resolutionRow(res vars.Resolution, current bool) string {
	mark := blankMark
	if current {
		mark = cursorMark
	}
	name := m.theme.Variable.Render(res.Name)
	if !res.Found {
		return mark + name + " " + m.theme.Muted.Render("unresolved")
	}
	room := m.width - len(mark) - runewidth.StringWidth(res.Name) - len(res.Label) - 6
	value := oneLine(res.Value)
	if room > 0 {
		value = runewidth.Truncate(value, room, ellipsis)
	}
	return mark + name + " = " + m.theme.Resolved.Render(value) + " " +
		m.theme.Muted.Render("("+res.Label+")")
}

func (m Model) selectionPrompt() string {
	return m.envLabel() + m.theme.Prompt.Render(cursorMark) +
		m.theme.PromptInput.Render(m.sess.Query())
}

func (m Model) bindingPrompt() string {
	if m.sess.Ready() {
		return m.envLabel() + m.theme.Prompt.Render("Ready, press "+m.confirmKey()+" to send")
	}
	label := "Enter a value for "
	if m.sess.PromptMode() == session.ModeHistory {
		label = "Pick a previous value for "
	}
	head := m.envLabel() + m.theme.Prompt.Render(label) +
		m.theme.Variable.Render(m.sess.Current()) + m.theme.Prompt.Render(": ")
	return head + m.theme.PromptInput.Render(m.sess.PromptText())
}

func (m Model) confirmKey() string {
	if keys := m.keys.Keys(bindings.ContextPrompt, bindings.ActionConfirm); len(keys) > 0 {
		return keys[0]
	}
	return string(bindings.ActionConfirm)
}

func (m Model) envLabel() string {
	name := m.sess.EnvironmentName()
	if name == "" {
		return m.theme.Muted.Render("[no env]") + " "
	}
	return m.theme.Environment.Render("["+name+"]") + " "
}

func (m Model) statusLine() string {
	if m.status != "" {
		return m.theme.Error.Render(runewidth.Truncate(oneLine(m.status), m.width, ellipsis))
	}
	if m.sess.Phase() == session.PhaseSelecting {
		total := len(m.sess.View())
		return m.theme.Muted.Render(pluralize(total, "request", "requests"))
	}
	if m.sess.Ready() {
		return m.theme.Muted.Render("all variables bound")
	}
	pending := len(m.sess.Pending())
	return m.theme.Muted.Render(pluralize(pending, "variable left", "variables left"))
}

func (m Model) helpBindings() []key.Binding {
	ctx := bindings.ContextSelect
	actions := []bindings.ActionID{
		bindings.ActionConfirm,
		bindings.ActionEnvNext,
		bindings.ActionMoveUp,
		bindings.ActionMoveDown,
		bindings.ActionQuit,
	}
	if m.sess.Phase() == session.PhaseBinding {
		ctx = bindings.ContextPrompt
		actions = []bindings.ActionID{
			bindings.ActionConfirm,
			bindings.ActionToggleMode,
			bindings.ActionEnvNext,
			bindings.ActionQuit,
		}
	}
	out := make([]key.Binding, 0, len(actions))
	for _, action := range actions {
		keys := m.keys.Keys(ctx, action)
		if len(keys) == 0 {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], bindings.Describe(action)),
		))
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
