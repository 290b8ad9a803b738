package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemMatch    lipgloss.Style
	ItemBroken   lipgloss.Style
	Description  lipgloss.Style
	Prompt       lipgloss.Style
	PromptInput  lipgloss.Style
	Variable     lipgloss.Style
	Environment  lipgloss.Style
	Resolved     lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
}

// Palette is the user facing colour configuration. Empty fields keep the
// default for that slot.
type Palette struct {
	DefaultFG  string `mapstructure:"default_fg"`
	DefaultBG  string `mapstructure:"default_bg"`
	SelectedFG string `mapstructure:"selected_fg"`
	SelectedBG string `mapstructure:"selected_bg"`
	PromptFG   string `mapstructure:"prompt_fg"`
	PromptBG   string `mapstructure:"prompt_bg"`
	VariableFG string `mapstructure:"variable_fg"`
	VariableBG string `mapstructure:"variable_bg"`
}

func DefaultTheme() Theme {
	green := lipgloss.Color("2")
	magenta := lipgloss.Color("13")
	muted := lipgloss.Color("8")

	return Theme{
		Item:         lipgloss.NewStyle(),
		ItemSelected: lipgloss.NewStyle().Foreground(green).Bold(true),
		ItemMatch:    lipgloss.NewStyle().Underline(true),
		ItemBroken:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Faint(true),
		Description:  lipgloss.NewStyle().Foreground(muted),
		Prompt:       lipgloss.NewStyle().Foreground(magenta).Bold(true),
		PromptInput:  lipgloss.NewStyle(),
		Variable:     lipgloss.NewStyle().Foreground(magenta).Bold(true),
		Environment:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Resolved:     lipgloss.NewStyle().Foreground(green),
		Muted:        lipgloss.NewStyle().Foreground(muted),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		HelpKey:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		HelpDesc:     lipgloss.NewStyle().Foreground(muted),
	}
}

// FromPalette applies p over the default theme. Every invalid colour is
// reported; valid ones are still applied.
func FromPalette(p Palette) (Theme, error) {
	th := DefaultTheme()
	var errs colorErrors

	apply := func(style *lipgloss.Style, field, fg, bg string) {
		if fg != "" {
			if c, err := ParseColor(fg); err != nil {
				errs.add(field+"_fg", err)
			} else {
				*style = style.Foreground(c)
			}
		}
		if bg != "" {
			if c, err := ParseColor(bg); err != nil {
				errs.add(field+"_bg", err)
			} else {
				*style = style.Background(c)
			}
		}
	}

	apply(&th.Item, "default", p.DefaultFG, p.DefaultBG)
	apply(&th.Description, "default", "", p.DefaultBG)
	apply(&th.ItemSelected, "selected", p.SelectedFG, p.SelectedBG)
	apply(&th.Prompt, "prompt", p.PromptFG, p.PromptBG)
	apply(&th.PromptInput, "prompt", "", p.PromptBG)
	apply(&th.Variable, "variable", p.VariableFG, p.VariableBG)

	return th, errs.err()
}
