// Package session implements the interactive selection and binding state
// machine. It performs no I/O: callers feed events and act on the returned
// effects.
package session

import (
	"errors"

	"github.com/unkn0wn-root/rhc/internal/fuzzy"
	"github.com/unkn0wn-root/rhc/internal/history"
	"github.com/unkn0wn-root/rhc/internal/restfile"
	"github.com/unkn0wn-root/rhc/internal/template"
	"github.com/unkn0wn-root/rhc/internal/vars"
)

type Phase int

const (
	PhaseSelecting Phase = iota
	PhaseBinding
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseBinding:
		return "binding"
	default:
		return "terminated"
	}
}

// Candidate is one selectable definition. Definition is nil when the file
// failed to load; Err then holds the reason.
type Candidate struct {
	ID          string
	Description string
	Definition  *restfile.Definition
	Err         error
}

// HistoryStore is the part of history.Store the session needs.
type HistoryStore interface {
	Lookup(name, envKey string) []string
	Record(name, envKey, value string)
}

type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeConfirmed
	OutcomeCancelled
)

type Outcome struct {
	Kind        OutcomeKind
	Candidate   *Candidate
	Definition  *restfile.Definition
	Environment *vars.Environment
	Bindings    map[string]string
}

var ErrNotSelectable = errors.New("definition cannot be selected")

type Options struct {
	Candidates   []Candidate
	Environments []*vars.Environment
	// ActiveEnvironment indexes Environments; -1 selects none.
	ActiveEnvironment int
	CLIBindings       map[string]string
	History           HistoryStore
}

type Session struct {
	candidates []Candidate
	envs       []*vars.Environment
	envIdx     int
	cli        map[string]string
	hist       HistoryStore

	phase Phase

	query     string
	search    []string
	view      []fuzzy.Ranked
	highlight int

	chosen   *Candidate
	required []string
	queue    []string
	prompted map[string]string
	prompt   promptState
	fault    error

	outcome Outcome
}

func New(opts Options) *Session {
	s := &Session{
		candidates: opts.Candidates,
		envs:       opts.Environments,
		envIdx:     -1,
		cli:        copyMap(opts.CLIBindings),
		hist:       opts.History,
		highlight:  -1,
	}
	if opts.ActiveEnvironment >= 0 && opts.ActiveEnvironment < len(opts.Environments) {
		s.envIdx = opts.ActiveEnvironment
	}
	s.rebuildSearch()
	s.refilter()
	return s
}

// Handle applies one event. Events after termination are ignored.
func (s *Session) Handle(ev Event) Effect {
	if ev.Kind == EventQuit && s.phase != PhaseTerminated {
		s.cancel()
		return EffectTerminated
	}
	switch s.phase {
	case PhaseSelecting:
		return s.handleSelecting(ev)
	case PhaseBinding:
		return s.handleBinding(ev)
	default:
		return 0
	}
}

func (s *Session) handleSelecting(ev Event) Effect {
	if q, ok := editLine(s.query, ev); ok {
		s.query = q
		s.refilter()
		return 0
	}
	switch ev.Kind {
	case EventMoveUp:
		// the list is drawn upward from the prompt, so up walks toward
		// lower ranked entries
		if len(s.view) > 0 {
			s.highlight = clampIndex(s.highlight+1, len(s.view))
		}
	case EventMoveDown:
		if len(s.view) > 0 {
			s.highlight = clampIndex(s.highlight-1, len(s.view))
		}
	case EventEnvNext:
		s.cycleEnvironment(1)
		s.rebuildSearch()
		s.refilter()
	case EventEnvPrev:
		s.cycleEnvironment(-1)
		s.rebuildSearch()
		s.refilter()
	case EventConfirm:
		if s.highlight < 0 {
			return 0
		}
		return s.choose(s.view[s.highlight].Index)
	}
	return 0
}

// Select starts binding the candidate at idx directly, as if it had been
// confirmed from the list.
func (s *Session) Select(idx int) (Effect, error) {
	if s.phase != PhaseSelecting {
		return 0, errors.New("session: selection already made")
	}
	if idx < 0 || idx >= len(s.candidates) {
		return 0, errors.New("session: candidate out of range")
	}
	if s.candidates[idx].Definition == nil {
		return 0, errors.Join(ErrNotSelectable, s.candidates[idx].Err)
	}
	return s.choose(idx), nil
}

func (s *Session) choose(idx int) Effect {
	c := &s.candidates[idx]
	if c.Definition == nil {
		s.fault = errors.Join(ErrNotSelectable, c.Err)
		return 0
	}
	s.fault = nil
	s.chosen = c
	s.required = template.ExtractVariables(c.Definition)
	s.prompted = make(map[string]string)
	_, unresolved := s.resolver().ResolveAll(s.required)
	if len(unresolved) == 0 {
		if s.finalize() {
			return EffectTerminated
		}
		s.chosen = nil
		return 0
	}
	s.phase = PhaseBinding
	s.queue = unresolved
	s.prompt = &entryPrompt{}
	return 0
}

func (s *Session) handleBinding(ev Event) Effect {
	switch p := s.prompt.(type) {
	case *entryPrompt:
		if buf, ok := editLine(p.buffer, ev); ok {
			p.buffer = buf
			return 0
		}
	case *historyPrompt:
		if buf, ok := editLine(p.buffer, ev); ok {
			p.buffer = buf
			p.refilter()
			return 0
		}
		switch ev.Kind {
		case EventMoveUp:
			if len(p.view) > 0 {
				p.highlight = clampIndex(p.highlight+1, len(p.view))
			}
			return 0
		case EventMoveDown:
			if len(p.view) > 0 {
				p.highlight = clampIndex(p.highlight-1, len(p.view))
			}
			return 0
		}
	}

	switch ev.Kind {
	case EventToggleMode:
		if len(s.queue) > 0 {
			s.toggleMode()
		}
	case EventEnvNext:
		s.cycleEnvironment(1)
		return s.reresolve()
	case EventEnvPrev:
		s.cycleEnvironment(-1)
		return s.reresolve()
	case EventConfirm:
		if len(s.queue) == 0 {
			if s.finalize() {
				return EffectTerminated
			}
			return 0
		}
		value, ok := s.prompt.selection()
		if !ok {
			return 0
		}
		return s.bind(value)
	}
	return 0
}

func (s *Session) toggleMode() {
	switch p := s.prompt.(type) {
	case *entryPrompt:
		var items []string
		if s.hist != nil {
			items = s.hist.Lookup(s.queue[0], s.envKey())
		}
		hp := &historyPrompt{buffer: p.buffer, items: items}
		hp.refilter()
		if len(hp.view) == 0 {
			return
		}
		s.prompt = hp
	case *historyPrompt:
		s.prompt = &entryPrompt{buffer: p.buffer}
	}
}

// bind assigns value to the variable at the front of the queue. When it was
// the last one the definition is rendered; a render failure rolls the
// binding back and leaves the session where it was.
func (s *Session) bind(value string) Effect {
	name := s.queue[0]
	prev, hadPrev := s.prompted[name]
	s.prompted[name] = value

	if len(s.queue) == 1 {
		if !s.finalize() {
			if hadPrev {
				s.prompted[name] = prev
			} else {
				delete(s.prompted, name)
			}
			return 0
		}
		s.record(name, value)
		return EffectRecorded | EffectTerminated
	}

	s.record(name, value)
	s.queue = s.queue[1:]
	s.prompt = &entryPrompt{}
	s.fault = nil
	return EffectRecorded
}

func (s *Session) record(name, value string) {
	if s.hist != nil {
		s.hist.Record(name, s.envKey(), value)
	}
}

// reresolve runs the resolver again after the environment changed. Names
// that lost their value go to the front of the queue in definition order;
// queued names that gained one leave it. An emptied queue leaves the session
// ready: only a confirm sends the request.
func (s *Session) reresolve() Effect {
	_, unresolved := s.resolver().ResolveAll(s.required)
	stillOpen := make(map[string]bool, len(unresolved))
	for _, name := range unresolved {
		stillOpen[name] = true
	}
	queued := make(map[string]bool, len(s.queue))
	for _, name := range s.queue {
		queued[name] = true
	}

	var front, rest []string
	for _, name := range unresolved {
		if !queued[name] {
			front = append(front, name)
		}
	}
	for _, name := range s.queue {
		if stillOpen[name] {
			rest = append(rest, name)
		}
	}

	previous := s.queue
	s.queue = append(front, rest...)
	if len(s.queue) == 0 {
		s.prompt = nil
		return 0
	}
	oldFront := ""
	if len(previous) > 0 {
		oldFront = previous[0]
	}
	if s.queue[0] != oldFront {
		s.prompt = &entryPrompt{}
	} else if hp, ok := s.prompt.(*historyPrompt); ok {
		// history is keyed by environment
		s.prompt = &entryPrompt{buffer: hp.buffer}
	}
	return 0
}

// finalize renders the chosen definition and terminates. It reports false
// and records the fault when rendering fails.
func (s *Session) finalize() bool {
	resolved, _ := s.resolver().ResolveAll(s.required)
	rendered, err := template.Render(s.chosen.Definition, resolved)
	if err != nil {
		s.fault = err
		return false
	}
	s.fault = nil
	s.phase = PhaseTerminated
	s.outcome = Outcome{
		Kind:        OutcomeConfirmed,
		Candidate:   s.chosen,
		Definition:  rendered,
		Environment: s.Environment(),
		Bindings:    resolved,
	}
	return true
}

func (s *Session) cancel() {
	s.phase = PhaseTerminated
	s.queue = nil
	s.prompt = nil
	s.outcome = Outcome{Kind: OutcomeCancelled}
}

func (s *Session) resolver() *vars.Resolver {
	return vars.Layered(s.cli, s.Environment().Map(), s.prompted)
}

// cycleEnvironment steps through the environments and the trailing "none"
// slot. It does nothing when there are no environments.
func (s *Session) cycleEnvironment(step int) {
	n := len(s.envs)
	if n == 0 {
		return
	}
	// slot n is "none"
	slot := s.envIdx
	if slot < 0 {
		slot = n
	}
	slot = ((slot+step)%(n+1) + n + 1) % (n + 1)
	if slot == n {
		s.envIdx = -1
	} else {
		s.envIdx = slot
	}
}

func (s *Session) envKey() string {
	if env := s.Environment(); env != nil {
		return history.EnvKey(env.Name)
	}
	return history.NoEnvironment
}

func (s *Session) rebuildSearch() {
	envVars := s.Environment().Map()
	s.search = make([]string, len(s.candidates))
	for i, c := range s.candidates {
		text := c.ID
		if c.Definition != nil {
			text += " " + template.Substitute(c.Definition.Request.URL, envVars)
		}
		s.search[i] = text
	}
}

func (s *Session) refilter() {
	s.view = fuzzy.Rank(s.query, s.search)
	s.highlight = clampIndex(s.highlight, len(s.view))
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
