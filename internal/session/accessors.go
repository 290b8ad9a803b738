package session

import (
	"github.com/unkn0wn-root/rhc/internal/vars"
)

// Item is one visible row of the definition list.
type Item struct {
	Candidate *Candidate
	Matched   []int
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Query() string { return s.query }

// View returns the filtered definitions, best match first.
func (s *Session) View() []Item {
	out := make([]Item, len(s.view))
	for i, r := range s.view {
		out[i] = Item{Candidate: &s.candidates[r.Index], Matched: r.MatchedIndexes}
	}
	return out
}

// Highlight indexes View, or is -1 when the view is empty.
func (s *Session) Highlight() int { return s.highlight }

// Environment returns the active environment, nil when none is active.
func (s *Session) Environment() *vars.Environment {
	if s.envIdx < 0 || s.envIdx >= len(s.envs) {
		return nil
	}
	return s.envs[s.envIdx]
}

func (s *Session) EnvironmentName() string {
	if env := s.Environment(); env != nil {
		return env.Name
	}
	return ""
}

func (s *Session) Chosen() *Candidate { return s.chosen }

// Current is the variable being prompted for, or "" outside binding.
func (s *Session) Current() string {
	if s.phase != PhaseBinding || len(s.queue) == 0 {
		return ""
	}
	return s.queue[0]
}

// Ready reports whether every variable is bound and the session waits for
// a confirm to send.
func (s *Session) Ready() bool {
	return s.phase == PhaseBinding && len(s.queue) == 0
}

// Pending lists the unresolved variables, the current one first.
func (s *Session) Pending() []string {
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

func (s *Session) Required() []string {
	out := make([]string, len(s.required))
	copy(out, s.required)
	return out
}

// Resolutions reports how each required variable is currently bound.
func (s *Session) Resolutions() []vars.Resolution {
	if s.chosen == nil {
		return nil
	}
	r := s.resolver()
	out := make([]vars.Resolution, 0, len(s.required))
	for _, name := range s.required {
		out = append(out, r.Lookup(name))
	}
	return out
}

func (s *Session) PromptMode() PromptMode {
	if s.prompt == nil {
		return ModeEntry
	}
	return s.prompt.mode()
}

func (s *Session) PromptText() string {
	if s.prompt == nil {
		return ""
	}
	return s.prompt.text()
}

// HistoryView returns the filtered history values while in history mode.
func (s *Session) HistoryView() []string {
	hp, ok := s.prompt.(*historyPrompt)
	if !ok {
		return nil
	}
	out := make([]string, len(hp.view))
	copy(out, hp.view)
	return out
}

func (s *Session) HistoryHighlight() int {
	hp, ok := s.prompt.(*historyPrompt)
	if !ok {
		return -1
	}
	return hp.highlight
}

// Fault holds the last error that blocked a transition.
func (s *Session) Fault() error { return s.fault }

func (s *Session) Outcome() Outcome { return s.outcome }

// Find returns the index of the candidate with the given ID.
func (s *Session) Find(id string) (int, bool) {
	for i, c := range s.candidates {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}
