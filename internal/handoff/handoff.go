// Package handoff carries the ephemeral state passed between the form, chat
// and result steps. Nothing here is persisted; a step entered without its
// payload must send the user back to the form.
package handoff

import (
	"errors"
	"strings"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// ErrMissingNavigationState means a step was entered without the data the
// previous step hands over.
var ErrMissingNavigationState = errors.New("missing navigation state")

// Notice is shown when the user is redirected to the first step.
const Notice = "Session information is missing. Please start again from the beginning."

// Chat is handed from the form step to the chat step.
type Chat struct {
	SessionID      string
	InitialMessage string
}

// Validate reports ErrMissingNavigationState when the session id is absent.
func (h *Chat) Validate() error {
	if h == nil || strings.TrimSpace(h.SessionID) == "" {
		return ErrMissingNavigationState
	}
	return nil
}

// Result is handed from the chat step to the result step.
type Result struct {
	SessionID string
	Recipe    *recipe.FinalRecipe
}

// Validate reports ErrMissingNavigationState when there is no recipe.
func (h *Result) Validate() error {
	if h == nil || h.Recipe == nil {
		return ErrMissingNavigationState
	}
	return nil
}
