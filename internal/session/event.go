package session

type EventKind int

const (
	EventInput EventKind = iota
	EventBackspace
	EventCutWord
	EventClearLine
	EventMoveUp
	EventMoveDown
	EventEnvNext
	EventEnvPrev
	EventToggleMode
	EventConfirm
	EventQuit
)

var eventNames = map[EventKind]string{
	EventInput:      "input",
	EventBackspace:  "backspace",
	EventCutWord:    "cut_word",
	EventClearLine:  "clear_line",
	EventMoveUp:     "move_up",
	EventMoveDown:   "move_down",
	EventEnvNext:    "env_next",
	EventEnvPrev:    "env_prev",
	EventToggleMode: "toggle_mode",
	EventConfirm:    "confirm",
	EventQuit:       "quit",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one discrete input. Text is only read for EventInput.
type Event struct {
	Kind EventKind
	Text string
}

func Input(text string) Event {
	return Event{Kind: EventInput, Text: text}
}

func Key(kind EventKind) Event {
	return Event{Kind: kind}
}

// Effect reports side effects of a handled event that the caller must act on.
type Effect uint8

const (
	EffectRecorded Effect = 1 << iota
	EffectTerminated
)

func (e Effect) Has(flag Effect) bool {
	return e&flag != 0
}
