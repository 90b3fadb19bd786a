package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

func TestChatValidate(t *testing.T) {
	var missing *Chat
	assert.ErrorIs(t, missing.Validate(), ErrMissingNavigationState)
	assert.ErrorIs(t, (&Chat{InitialMessage: "hi"}).Validate(), ErrMissingNavigationState)
	assert.ErrorIs(t, (&Chat{SessionID: "  "}).Validate(), ErrMissingNavigationState)
	assert.NoError(t, (&Chat{SessionID: "s-1"}).Validate())
}

func TestResultValidate(t *testing.T) {
	var missing *Result
	assert.ErrorIs(t, missing.Validate(), ErrMissingNavigationState)
	assert.ErrorIs(t, (&Result{SessionID: "s-1"}).Validate(), ErrMissingNavigationState)
	assert.NoError(t, (&Result{SessionID: "s-1", Recipe: &recipe.FinalRecipe{Name: "Stew"}}).Validate())
}
