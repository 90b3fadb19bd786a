package tui

import (
	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// Step identifies the screen being shown.
type Step int

const (
	StepForm Step = iota
	StepChat
	StepResult
)

// NavigateMsg moves to another step. Chat and Result carry the handoff the
// target step needs; a nil handoff is a missing navigation state.
type NavigateMsg struct {
	To     Step
	Chat   *handoff.Chat
	Result *handoff.Result
	Notice string
}

// StateChangedMsg is sent when the session store changes.
type StateChangedMsg struct{}

// InitDoneMsg carries the result of creating a session.
type InitDoneMsg struct {
	Result *recipe.InitResult
	Err    error
}

// SendDoneMsg is sent when a chat message round trip finishes.
type SendDoneMsg struct {
	Err error
}

// FinalizeDoneMsg carries the finalized recipe.
type FinalizeDoneMsg struct {
	SessionID string
	Recipe    *recipe.FinalRecipe
	Err       error
}

// RefetchDoneMsg carries a re-read final recipe.
type RefetchDoneMsg struct {
	Recipe *recipe.FinalRecipe
	Err    error
}

// OpDoneMsg is sent when an operation without a payload finishes.
type OpDoneMsg struct {
	Op  string
	Err error
}
