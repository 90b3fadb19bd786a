package kitchen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

type scriptedResponder struct {
	replies []string
	err     error
	seen    [][]recipe.Message
}

func (r *scriptedResponder) Reply(_ context.Context, _ recipe.Profile, history []recipe.Message, _ string) (string, error) {
	r.seen = append(r.seen, history)
	if r.err != nil {
		return "", r.err
	}
	reply := r.replies[0]
	r.replies = r.replies[1:]
	return reply, nil
}

func stewProfile() recipe.Profile {
	return recipe.Profile{Allergy: "peanut", Preferences: "spicy", FoodType: "kimchi stew"}
}

func TestInitSessionRunsFirstTurn(t *testing.T) {
	svc := NewService(nil, nil)

	res, err := svc.InitSession(context.Background(), stewProfile())
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Contains(t, res.InitialMessage, "kimchi stew")
	assert.Contains(t, res.InitialMessage, "peanut")

	history, err := svc.History(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, recipe.RoleUser, history[0].Role)
	assert.Equal(t, "kimchi stew 레시피를 알려줘", history[0].Content)
	assert.Equal(t, recipe.AssistantMessage(res.InitialMessage), history[1])

	info, err := svc.Info(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, &recipe.SessionInfo{
		Allergy:      []string{"peanut"},
		Preferences:  "spicy",
		CookingLevel: "beginner",
		FoodType:     "kimchi stew",
	}, info)
}

func TestInitSessionValidatesProfile(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.InitSession(context.Background(), recipe.Profile{})
	assert.ErrorIs(t, err, recipe.ErrFoodTypeRequired)
}

func TestInitSessionResponderFailureLeavesNoSession(t *testing.T) {
	boom := errors.New("model unavailable")
	svc := NewService(&scriptedResponder{err: boom}, nil)

	_, err := svc.InitSession(context.Background(), stewProfile())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, svc.sessions)
}

func TestChatPassesHistory(t *testing.T) {
	r := &scriptedResponder{replies: []string{"김치찌개\n## 재료\n- 김치", "맛있게 드세요"}}
	svc := NewService(r, nil)

	res, err := svc.InitSession(context.Background(), stewProfile())
	require.NoError(t, err)

	reply, err := svc.Chat(context.Background(), res.SessionID, "고마워")
	require.NoError(t, err)
	assert.False(t, reply.IsRecipe)
	assert.Len(t, r.seen[1], 2)
}

func TestChatUnknownSession(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.Chat(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Info(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Finalize(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrSessionNotFound)
}

func TestFinalizeUsesLatestRecipe(t *testing.T) {
	r := &scriptedResponder{replies: []string{
		"# 김치찌개\n## 재료\n- 김치",
		"# 순한 김치찌개\n## 재료\n- 김치 반 포기",
		"맛있게 드세요",
	}}
	svc := NewService(r, nil)
	ctx := context.Background()

	res, err := svc.InitSession(ctx, stewProfile())
	require.NoError(t, err)
	_, err = svc.Chat(ctx, res.SessionID, "덜 맵게")
	require.NoError(t, err)
	_, err = svc.Chat(ctx, res.SessionID, "고마워")
	require.NoError(t, err)

	first, err := svc.Finalize(ctx, res.SessionID, "")
	require.NoError(t, err)
	assert.Equal(t, "순한 김치찌개", first.Name)
	assert.True(t, first.IsFinalized)
	assert.Equal(t, ImagePrompt("순한 김치찌개"), first.ImagePrompt)

	second, err := svc.Finalize(ctx, res.SessionID, "yes")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := svc.FinalRecipe(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	info, err := svc.Info(ctx, res.SessionID)
	require.NoError(t, err)
	assert.True(t, info.IsFinalized)
}

func TestFinalizeFallsBackToHistory(t *testing.T) {
	svc := NewService(nil, nil)
	id := "s-1"
	svc.sessions[id] = &session{
		profile: stewProfile(),
		history: []recipe.Message{
			recipe.AssistantMessage("# 된장찌개\n재료: 된장"),
			recipe.UserMessage("고마워"),
			recipe.AssistantMessage("맛있게 드세요"),
		},
	}

	got, err := svc.Finalize(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, "된장찌개", got.Name)
}

func TestFinalizeWithoutRecipe(t *testing.T) {
	svc := NewService(nil, nil)
	svc.sessions["s-1"] = &session{profile: stewProfile()}

	_, err := svc.Finalize(context.Background(), "s-1", "")
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.FinalRecipe(context.Background(), "s-1")
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestDelete(t *testing.T) {
	svc := NewService(nil, nil)
	res, err := svc.InitSession(context.Background(), stewProfile())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), res.SessionID))
	_, err = svc.History(context.Background(), res.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestChatStreamEmitsLinesAndRecords(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()
	res, err := svc.InitSession(ctx, stewProfile())
	require.NoError(t, err)

	var deltas []string
	reply, err := svc.ChatStream(ctx, res.SessionID, "less spicy please", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, reply.IsRecipe)
	assert.Greater(t, len(deltas), 1)
	assert.Equal(t, reply.Response, strings.Join(deltas, ""))

	history, err := svc.History(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, recipe.AssistantMessage(reply.Response), history[3])
}

func TestChatStreamFallsBackToWholeReply(t *testing.T) {
	r := &scriptedResponder{replies: []string{"# 김치찌개\n## 재료", "더 맵게 할까요?"}}
	svc := NewService(r, nil)
	ctx := context.Background()
	res, err := svc.InitSession(ctx, stewProfile())
	require.NoError(t, err)

	var deltas []string
	_, err = svc.ChatStream(ctx, res.SessionID, "hmm", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"더 맵게 할까요?"}, deltas)
}

func TestChatStreamAbortLeavesHistory(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()
	res, err := svc.InitSession(ctx, stewProfile())
	require.NoError(t, err)

	gone := errors.New("client gone")
	_, err = svc.ChatStream(ctx, res.SessionID, "again", func(string) error { return gone })
	require.ErrorIs(t, err, gone)

	history, err := svc.History(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestChatStreamUnknownSession(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.ChatStream(context.Background(), "missing", "hi", func(string) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
