package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

const (
	fieldFoodType = iota
	fieldAllergy
	fieldPreferences
	fieldLevel
	fieldCount
)

var fieldLabels = [fieldCount]string{"Dish", "Allergies", "Preferences", "Cooking level"}

// formView collects the profile for a new session.
type formView struct {
	inputs [fieldLevel]textinput.Model
	level  int
	focus  int
}

func newFormView() formView {
	var f formView
	placeholders := [fieldLevel]string{"kimchi stew", "peanut, shrimp", "spicy, no pork"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		ti.Width = 40
		ti.Prompt = "> "
		f.inputs[i] = ti
	}
	f.inputs[fieldFoodType].Focus()
	return f
}

func (f formView) profile() recipe.Profile {
	return recipe.Profile{
		FoodType:     strings.TrimSpace(f.inputs[fieldFoodType].Value()),
		Allergy:      strings.TrimSpace(f.inputs[fieldAllergy].Value()),
		Preferences:  strings.TrimSpace(f.inputs[fieldPreferences].Value()),
		CookingLevel: recipe.Levels()[f.level],
	}
}

func (f formView) setFocus(i int) formView {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f
}

func (f formView) cycleLevel(delta int) formView {
	n := len(recipe.Levels())
	f.level = (f.level + delta + n) % n
	return f
}

// update handles keys that stay inside the form. submit is true when the
// user asked to create the session.
func (f formView) update(msg tea.KeyMsg) (formView, tea.Cmd, bool) {
	switch msg.String() {
	case KeyTab, KeyDown:
		return f.setFocus(f.focus + 1), nil, false
	case KeyShiftTab, KeyUp:
		return f.setFocus(f.focus - 1), nil, false
	case KeyEnter:
		if f.focus == fieldLevel {
			return f, nil, true
		}
		return f.setFocus(f.focus + 1), nil, false
	}

	if f.focus == fieldLevel {
		switch msg.String() {
		case KeyLeft:
			return f.cycleLevel(-1), nil, false
		case KeyRight, " ":
			return f.cycleLevel(1), nil, false
		}
		return f, nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f formView) view(loading bool, spin, errText, notice string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("AI Cookbook"))
	b.WriteString("\n\n")
	if notice != "" {
		b.WriteString(NoticeStyle.Render(notice))
		b.WriteString("\n\n")
	}

	for i := 0; i < fieldCount; i++ {
		label := LabelStyle
		if i == f.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		if i == fieldLevel {
			b.WriteString(fmt.Sprintf("  ‹ %s ›\n\n", recipe.Levels()[f.level]))
			continue
		}
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}

	if loading {
		b.WriteString(spin + " Preparing your first recipe...\n")
	}
	if errText != "" {
		b.WriteString(ErrorStyle.Render(errText) + "\n")
	}
	b.WriteString("\n" + footer("tab", "next field", "←/→", "level", "enter", "start", "ctrl+c", "quit"))
	return b.String()
}
