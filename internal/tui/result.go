package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// MissingRecipeText is shown when the result step has no recipe to display.
const MissingRecipeText = "No recipe data."

// resultView shows a finalized recipe.
type resultView struct {
	handoff  *handoff.Result
	viewport viewport.Model
}

func newResultView() resultView {
	return resultView{viewport: viewport.New(80, 18)}
}

func (r resultView) resize(width, height int) resultView {
	r.viewport.Width = width
	r.viewport.Height = max(height-6, 3)
	return r
}

func (r resultView) missing() bool {
	return r.handoff.Validate() != nil
}

func (r resultView) setRecipe(rec *recipe.FinalRecipe, renderer *glamour.TermRenderer) resultView {
	var sessionID string
	if r.handoff != nil {
		sessionID = r.handoff.SessionID
	}
	r.handoff = &handoff.Result{SessionID: sessionID, Recipe: rec.Clone()}
	if rec == nil {
		r.viewport.SetContent("")
		return r
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(safeRenderMarkdown(renderer, rec.Content), "\n"))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Image prompt"))
	b.WriteString("\n")
	b.WriteString(rec.ImagePrompt)
	r.viewport.SetContent(b.String())
	r.viewport.GotoTop()
	return r
}

func (r resultView) view(loading bool, spin, errText string) string {
	if r.missing() {
		return TitleStyle.Render(MissingRecipeText) + "\n\n" +
			footer("n", "start over", "q", "quit")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(r.handoff.Recipe.Name))
	b.WriteString("\n")
	b.WriteString(r.viewport.View())
	b.WriteString("\n")
	if loading {
		b.WriteString(spin + " Refreshing...")
	}
	if errText != "" {
		b.WriteString(ErrorStyle.Render(errText))
	}
	b.WriteString("\n")
	b.WriteString(footer("r", "refresh", "n", "new recipe", "q", "quit"))
	return b.String()
}
