package tui

// Key binding constants used in the step handlers.
const (
	KeyCtrlC     = "ctrl+c"
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyEsc       = "esc"
	KeyFinalize  = "ctrl+f"
	KeyReload    = "ctrl+r"
	KeyNewRecipe = "ctrl+n"
	KeyRefetch   = "r"
	KeyNew       = "n"
	KeyQuit      = "q"
)
