package chat

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

func activeState(messages ...recipe.Message) State {
	s := State{}.started("s-1", "")
	s.Transcript = append(s.Transcript, messages...)
	return s
}

func TestRollbackRestoresTranscript(t *testing.T) {
	before := activeState(recipe.AssistantMessage("Try kimchi stew"))

	s, id := before.begin().appendOptimistic(recipe.UserMessage("less spicy"))
	assert.Len(t, s.Transcript, 2)
	assert.Equal(t, 1, s.Pending())

	s = s.rollback(id).fail(errors.New("boom"))
	if diff := cmp.Diff(before.Transcript, s.Transcript); diff != "" {
		t.Fatalf("transcript mismatch after rollback (-want +got):\n%s", diff)
	}
	assert.Zero(t, s.Pending())
	assert.Equal(t, "boom", s.Err)
	assert.False(t, s.Loading)
}

func TestRollbackRunsAtMostOnce(t *testing.T) {
	s, id := activeState(recipe.AssistantMessage("hi")).appendOptimistic(recipe.UserMessage("a"))
	s = s.rollback(id)
	s = s.appendConfirmed(recipe.UserMessage("a"))

	// A second rollback of the same op must not remove the new message.
	s = s.rollback(id)
	assert.Len(t, s.Transcript, 2)
}

func TestCommitDiscardsUndo(t *testing.T) {
	s, id := activeState().appendOptimistic(recipe.UserMessage("a"))
	s = s.commit(id).appendConfirmed(recipe.AssistantMessage("b"))
	s = s.rollback(id)

	assert.Equal(t, []recipe.Message{recipe.UserMessage("a"), recipe.AssistantMessage("b")}, s.Transcript)
}

func TestUndoLeavesForeignTailAlone(t *testing.T) {
	s, id := activeState().appendOptimistic(recipe.UserMessage("a"))
	s = s.appendConfirmed(recipe.AssistantMessage("b"))

	s = s.rollback(id)
	assert.Len(t, s.Transcript, 2)
}

func TestTransitionsDoNotAlias(t *testing.T) {
	base := activeState(recipe.AssistantMessage("hi"))
	base.Transcript = append(make([]recipe.Message, 0, 8), base.Transcript...)

	a, _ := base.appendOptimistic(recipe.UserMessage("a"))
	b, _ := base.appendOptimistic(recipe.UserMessage("b"))

	assert.Equal(t, "a", a.Transcript[1].Content)
	assert.Equal(t, "b", b.Transcript[1].Content)
	assert.Len(t, base.Transcript, 1)
}

func TestReconciledDropsPending(t *testing.T) {
	s, id := activeState(recipe.AssistantMessage("hi")).appendOptimistic(recipe.UserMessage("lost"))

	history := []recipe.Message{recipe.AssistantMessage("hi")}
	s = s.reconciled(&recipe.SessionInfo{FoodType: "stew"}, history)

	assert.Zero(t, s.Pending())
	assert.Equal(t, history, s.Transcript)
	assert.Equal(t, PhaseActive, s.Phase)

	// The dropped op can no longer touch the transcript.
	s = s.rollback(id)
	assert.Equal(t, history, s.Transcript)
}

func TestReconciledEntersFinalized(t *testing.T) {
	s := activeState().reconciled(&recipe.SessionInfo{IsFinalized: true}, nil)

	assert.Equal(t, PhaseFinalized, s.Phase)
	assert.NotNil(t, s.Transcript)
	assert.Empty(t, s.Transcript)
}

func TestFinalizedMarksInfo(t *testing.T) {
	s := activeState()
	s.Info = &recipe.SessionInfo{FoodType: "stew"}

	r := &recipe.FinalRecipe{SessionID: "s-1", Name: "Stew", IsFinalized: true}
	s = s.finalized(r)
	r.Name = "mutated"

	assert.Equal(t, PhaseFinalized, s.Phase)
	assert.Equal(t, "Stew", s.Recipe.Name)
	assert.True(t, s.Info.IsFinalized)
}

func TestStartedSeedsInitialMessage(t *testing.T) {
	s := State{}.started("s-2", "Try bibimbap")
	assert.Equal(t, []recipe.Message{recipe.AssistantMessage("Try bibimbap")}, s.Transcript)

	s = State{}.started("s-3", "")
	assert.Empty(t, s.Transcript)
}

func TestResetKeepsOpCounter(t *testing.T) {
	s, id := activeState().appendOptimistic(recipe.UserMessage("a"))
	s = s.reset()

	assert.Equal(t, PhaseUninitialized, s.Phase)
	_, next := s.started("s-9", "").appendOptimistic(recipe.UserMessage("b"))
	assert.Greater(t, next, id)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uninitialized", PhaseUninitialized.String())
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "finalized", PhaseFinalized.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
