package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/chat"
)

// waitForChange blocks until the store signals a change.
func waitForChange(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}

func navigateCmd(msg NavigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func initCmd(ctx context.Context, o *chat.Orchestrator, profile recipe.Profile) tea.Cmd {
	return func() tea.Msg {
		res, err := o.Init(ctx, profile)
		return InitDoneMsg{Result: res, Err: err}
	}
}

func adoptCmd(ctx context.Context, o *chat.Orchestrator, h handoff.Chat) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: "adopt", Err: o.Adopt(ctx, h)}
	}
}

func sendCmd(ctx context.Context, o *chat.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := o.SendMessage(ctx, text)
		return SendDoneMsg{Err: err}
	}
}

func finalizeCmd(ctx context.Context, o *chat.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		sessionID := o.Store().SessionID()
		r, err := o.Finalize(ctx, "")
		return FinalizeDoneMsg{SessionID: sessionID, Recipe: r, Err: err}
	}
}

func refetchCmd(ctx context.Context, o *chat.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		r, err := o.Refetch(ctx)
		return RefetchDoneMsg{Recipe: r, Err: err}
	}
}

func loadHistoryCmd(ctx context.Context, o *chat.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: "load_history", Err: o.LoadHistory(ctx)}
	}
}

func resetCmd(ctx context.Context, o *chat.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: "reset", Err: o.Reset(ctx)}
	}
}
