package chat

import (
	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// Phase is the client-side lifecycle of a chat session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseActive
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseActive:
		return "active"
	case PhaseFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// State is everything the views render. Values handed out by the Store are
// copies; transitions below never modify their receiver's slices in place.
type State struct {
	Phase      Phase
	SessionID  string
	Transcript []recipe.Message
	Info       *recipe.SessionInfo
	Recipe     *recipe.FinalRecipe
	Loading    bool
	Err        string

	pending []pendingOp
	nextOp  uint64
}

// pendingOp records how to undo an optimistic mutation.
type pendingOp struct {
	id   uint64
	undo func(State) State
}

// Pending returns the number of optimistic mutations awaiting confirmation.
func (s State) Pending() int {
	return len(s.pending)
}

func (s State) clone() State {
	s.Transcript = recipe.CloneMessages(s.Transcript)
	s.Info = s.Info.Clone()
	s.Recipe = s.Recipe.Clone()
	if s.pending != nil {
		s.pending = append([]pendingOp(nil), s.pending...)
	}
	return s
}

func (s State) begin() State {
	s.Loading = true
	s.Err = ""
	return s
}

func (s State) done() State {
	s.Loading = false
	return s
}

func (s State) fail(err error) State {
	s.Loading = false
	s.Err = err.Error()
	return s
}

func (s State) clearErr() State {
	s.Err = ""
	return s
}

// started enters Active for a session whose first assistant message is known.
func (s State) started(sessionID, initialMessage string) State {
	s.Phase = PhaseActive
	s.SessionID = sessionID
	s.Transcript = []recipe.Message{}
	if initialMessage != "" {
		s.Transcript = append(s.Transcript, recipe.AssistantMessage(initialMessage))
	}
	s.Info = nil
	s.Recipe = nil
	s.pending = nil
	return s
}

func (s State) initialized(res recipe.InitResult) State {
	return s.started(res.SessionID, res.InitialMessage)
}

func (s State) adopted(h handoff.Chat) State {
	return s.started(h.SessionID, h.InitialMessage)
}

// appendOptimistic shows msg before the backend confirms it and returns the
// id to commit or roll back with.
func (s State) appendOptimistic(msg recipe.Message) (State, uint64) {
	idx := len(s.Transcript)
	s.Transcript = append(recipe.CloneMessages(s.Transcript), msg)

	s.nextOp++
	id := s.nextOp
	s.pending = append(append([]pendingOp(nil), s.pending...), pendingOp{
		id: id,
		undo: func(st State) State {
			// Only the message this op appended may be removed.
			if len(st.Transcript) == idx+1 && st.Transcript[idx] == msg {
				st.Transcript = recipe.CloneMessages(st.Transcript[:idx])
			}
			return st
		},
	})
	return s, id
}

// takePending removes op id from the pending list.
func (s State) takePending(id uint64) (State, *pendingOp) {
	for i, op := range s.pending {
		if op.id != id {
			continue
		}
		rest := make([]pendingOp, 0, len(s.pending)-1)
		rest = append(rest, s.pending[:i]...)
		rest = append(rest, s.pending[i+1:]...)
		s.pending = rest
		return s, &op
	}
	return s, nil
}

// commit confirms op id; its undo is discarded.
func (s State) commit(id uint64) State {
	s, _ = s.takePending(id)
	return s
}

// rollback reverts op id. An op already committed, rolled back or dropped by
// reconciliation is a no-op, so each undo runs at most once.
func (s State) rollback(id uint64) State {
	s, op := s.takePending(id)
	if op == nil {
		return s
	}
	return op.undo(s)
}

func (s State) appendConfirmed(msg recipe.Message) State {
	s.Transcript = append(recipe.CloneMessages(s.Transcript), msg)
	return s
}

func (s State) finalized(r *recipe.FinalRecipe) State {
	s.Phase = PhaseFinalized
	s.Recipe = r.Clone()
	if s.Info != nil {
		s.Info = s.Info.Clone()
		s.Info.IsFinalized = true
	}
	return s
}

func (s State) refetched(r *recipe.FinalRecipe) State {
	s.Recipe = r.Clone()
	return s
}

// reconciled replaces transcript and metadata with the backend's view.
// Pending optimistic messages are dropped, not merged.
func (s State) reconciled(info *recipe.SessionInfo, history []recipe.Message) State {
	s.Info = info.Clone()
	s.Transcript = recipe.CloneMessages(history)
	if s.Transcript == nil {
		s.Transcript = []recipe.Message{}
	}
	s.pending = nil
	if info != nil && info.IsFinalized {
		s.Phase = PhaseFinalized
	}
	return s
}

// reset forgets the session. Op ids keep increasing so a late rollback can
// never match a new op.
func (s State) reset() State {
	return State{nextOp: s.nextOp}
}
