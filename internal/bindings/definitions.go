package bindings

// Context selects which key table applies. Tab cycles environments while
// selecting and toggles the prompt mode while binding.
type Context string

const (
	ContextSelect Context = "select"
	ContextPrompt Context = "prompt"
)

var contexts = []Context{ContextSelect, ContextPrompt}

const (
	ActionConfirm    ActionID = "confirm"
	ActionQuit       ActionID = "quit"
	ActionMoveUp     ActionID = "move_up"
	ActionMoveDown   ActionID = "move_down"
	ActionEnvNext    ActionID = "env_next"
	ActionEnvPrev    ActionID = "env_prev"
	ActionToggleMode ActionID = "toggle_mode"
	ActionCutWord    ActionID = "cut_word"
	ActionClearLine  ActionID = "clear_line"
	ActionBackspace  ActionID = "backspace"
)

type definition struct {
	id          ActionID
	description string
	defaults    map[Context][]string
}

var definitions = []definition{
	{
		id:          ActionConfirm,
		description: "confirm",
		defaults: map[Context][]string{
			ContextSelect: {"enter"},
			ContextPrompt: {"enter"},
		},
	},
	{
		id:          ActionQuit,
		description: "quit",
		defaults: map[Context][]string{
			ContextSelect: {"ctrl+c", "esc"},
			ContextPrompt: {"ctrl+c", "esc"},
		},
	},
	{
		id:          ActionMoveUp,
		description: "up",
		defaults: map[Context][]string{
			ContextSelect: {"up", "ctrl+k"},
			ContextPrompt: {"up", "ctrl+k"},
		},
	},
	{
		id:          ActionMoveDown,
		description: "down",
		defaults: map[Context][]string{
			ContextSelect: {"down", "ctrl+j"},
			ContextPrompt: {"down", "ctrl+j"},
		},
	},
	{
		id:          ActionEnvNext,
		description: "next env",
		defaults: map[Context][]string{
			ContextSelect: {"tab"},
			ContextPrompt: {"ctrl+n"},
		},
	},
	{
		id:          ActionEnvPrev,
		description: "prev env",
		defaults: map[Context][]string{
			ContextSelect: {"shift+tab"},
			ContextPrompt: {"ctrl+p"},
		},
	},
	{
		id:          ActionToggleMode,
		description: "history",
		defaults: map[Context][]string{
			ContextPrompt: {"tab"},
		},
	},
	{
		id:          ActionCutWord,
		description: "cut word",
		defaults: map[Context][]string{
			ContextSelect: {"ctrl+w"},
			ContextPrompt: {"ctrl+w"},
		},
	},
	{
		id:          ActionClearLine,
		description: "clear",
		defaults: map[Context][]string{
			ContextSelect: {"ctrl+u"},
			ContextPrompt: {"ctrl+u"},
		},
	},
	{
		id:          ActionBackspace,
		description: "delete",
		defaults: map[Context][]string{
			ContextSelect: {"backspace"},
			ContextPrompt: {"backspace"},
		},
	},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()

// Describe returns the short help label of an action.
func Describe(action ActionID) string {
	if def, ok := definitionLookup[action]; ok {
		return def.description
	}
	return string(action)
}
