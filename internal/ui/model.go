package ui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/rhc/internal/bindings"
	"github.com/unkn0wn-root/rhc/internal/logger"
	"github.com/unkn0wn-root/rhc/internal/session"
	"github.com/unkn0wn-root/rhc/internal/theme"
	"github.com/unkn0wn-root/rhc/internal/ui/scroll"
)

const (
	defaultWidth  = 80
	defaultHeight = 12
	// prompt line, status line and help footer
	chromeLines = 3
)

// Persister flushes recorded history. history.Store satisfies it.
type Persister interface {
	Persist() error
}

type Config struct {
	Session  *session.Session
	Bindings *bindings.Map
	Theme    *theme.Theme
	History  Persister
	Logger   logger.Logger
}

type persistedMsg struct {
	err error
}

type Model struct {
	cfg      Config
	sess     *session.Session
	keys     *bindings.Map
	theme    theme.Theme
	help     help.Model
	log      logger.Logger
	width    int
	height   int
	listOff  int
	histOff  int
	status   string
	quitting bool
}

func New(cfg Config) Model {
	keys := cfg.Bindings
	if keys == nil {
		keys = bindings.DefaultMap()
	}
	th := theme.DefaultTheme()
	if cfg.Theme != nil {
		th = *cfg.Theme
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	h := help.New()
	h.ShortSeparator = "  "
	h.Styles.ShortKey = th.HelpKey
	h.Styles.ShortDesc = th.HelpDesc
	h.Styles.ShortSeparator = th.Muted

	m := Model{
		cfg:    cfg,
		sess:   cfg.Session,
		keys:   keys,
		theme:  th,
		help:   h,
		log:    log,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.syncOffsets()
	return m
}

// Session exposes the wrapped state machine.
func (m Model) Session() *session.Session { return m.sess }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = typed.Width
		m.syncOffsets()
	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		cmd := m.handleKey(typed)
		return m, cmd
	case persistedMsg:
		if typed.err != nil {
			m.log.Warn("history persist failed", "err", typed.err)
			m.status = "history not saved: " + typed.err.Error()
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	ev, ok := m.eventFor(msg)
	if !ok {
		return nil
	}
	effect := m.sess.Handle(ev)
	m.syncOffsets()
	if err := m.sess.Fault(); err != nil && ev.Kind == session.EventConfirm {
		m.status = err.Error()
	} else {
		m.status = ""
	}

	switch {
	case effect.Has(session.EffectTerminated):
		m.quitting = true
		if persist := m.persistCmd(); persist != nil {
			return tea.Sequence(persist, tea.Quit)
		}
		return tea.Quit
	case effect.Has(session.EffectRecorded):
		return m.persistCmd()
	}
	return nil
}

func (m *Model) eventFor(msg tea.KeyMsg) (session.Event, bool) {
	ctx := bindings.ContextSelect
	if m.sess.Phase() == session.PhaseBinding {
		ctx = bindings.ContextPrompt
	}
	if action, ok := m.keys.Match(ctx, msg.String()); ok {
		if kind, ok := actionEvents[action]; ok {
			return session.Key(kind), true
		}
	}
	switch msg.Type {
	case tea.KeySpace:
		return session.Input(" "), true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return session.Event{}, false
		}
		return session.Input(string(msg.Runes)), true
	}
	return session.Event{}, false
}

var actionEvents = map[bindings.ActionID]session.EventKind{
	bindings.ActionConfirm:    session.EventConfirm,
	bindings.ActionQuit:       session.EventQuit,
	bindings.ActionMoveUp:     session.EventMoveUp,
	bindings.ActionMoveDown:   session.EventMoveDown,
	bindings.ActionEnvNext:    session.EventEnvNext,
	bindings.ActionEnvPrev:    session.EventEnvPrev,
	bindings.ActionToggleMode: session.EventToggleMode,
	bindings.ActionCutWord:    session.EventCutWord,
	bindings.ActionClearLine:  session.EventClearLine,
	bindings.ActionBackspace:  session.EventBackspace,
}

func (m *Model) persistCmd() tea.Cmd {
	store := m.cfg.History
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return persistedMsg{err: store.Persist()}
	}
}

func (m *Model) listHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

// syncOffsets keeps the highlighted rows inside their windows. Row 0 is
// drawn at the bottom, closest to the prompt.
func (m *Model) syncOffsets() {
	h := m.listHeight()
	m.listOff = scroll.Align(m.sess.Highlight(), m.listOff, h, len(m.sess.View()))
	m.histOff = scroll.Align(m.sess.HistoryHighlight(), m.histOff, h, len(m.sess.HistoryView()))
}
