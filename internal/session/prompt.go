package session

import "github.com/unkn0wn-root/rhc/internal/fuzzy"

type PromptMode int

const (
	ModeEntry PromptMode = iota
	ModeHistory
)

func (m PromptMode) String() string {
	if m == ModeHistory {
		return "history"
	}
	return "entry"
}

type promptState interface {
	mode() PromptMode
	text() string
	selection() (string, bool)
}

type entryPrompt struct {
	buffer string
}

func (p *entryPrompt) mode() PromptMode { return ModeEntry }
func (p *entryPrompt) text() string     { return p.buffer }

// Any buffer, including an empty one, is a valid value.
func (p *entryPrompt) selection() (string, bool) {
	return p.buffer, true
}

type historyPrompt struct {
	buffer    string
	items     []string
	view      []string
	highlight int
}

func (p *historyPrompt) mode() PromptMode { return ModeHistory }
func (p *historyPrompt) text() string     { return p.buffer }

func (p *historyPrompt) selection() (string, bool) {
	if p.highlight < 0 || p.highlight >= len(p.view) {
		return "", false
	}
	return p.view[p.highlight], true
}

func (p *historyPrompt) refilter() {
	p.view = fuzzy.Match(p.buffer, p.items)
	p.highlight = clampIndex(p.highlight, len(p.view))
}
