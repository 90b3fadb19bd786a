package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/aicookbook/recipechat/internal/config"
	"github.com/aicookbook/recipechat/internal/model/recipe"
)

func TestBuildHistoryMessagesKeepsTail(t *testing.T) {
	messages := []recipe.Message{
		recipe.UserMessage("1"),
		recipe.AssistantMessage("2"),
		recipe.UserMessage("3"),
		{Role: "system", Content: "ignored"},
	}

	got := buildHistoryMessages(messages, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Role != schema.Assistant || got[0].Content != "2" {
		t.Fatalf("unexpected first message: %+v", got[0])
	}
	if got[1].Role != schema.User || got[1].Content != "3" {
		t.Fatalf("unexpected second message: %+v", got[1])
	}

	if buildHistoryMessages(nil, 10) != nil {
		t.Fatal("expected nil history for empty transcript")
	}
}

func TestBuildQueryIncludesProfile(t *testing.T) {
	q := buildQuery(recipe.Profile{Allergy: "peanut, milk", CookingLevel: recipe.LevelIntermediate}, "kimchi stew 레시피를 알려줘")

	for _, want := range []string{"peanut, milk", "중급", "[특이사항]\n없음", "kimchi stew 레시피를 알려줘"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
}

func TestBuildQueryDefaults(t *testing.T) {
	q := buildQuery(recipe.Profile{}, "hi")
	if !strings.Contains(q, "[알러지]\n없음") || !strings.Contains(q, "초보") {
		t.Fatalf("unexpected defaults:\n%s", q)
	}
}

// stubModel answers every Generate call with a fixed reply. Stream returns
// chunks when set, otherwise the reply as a single chunk.
type stubModel struct {
	reply  string
	chunks []string
	input  []*schema.Message
}

func (m *stubModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.input = input
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.input = input
	if len(m.chunks) == 0 {
		return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(m.reply, nil)}), nil
	}
	msgs := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func (m *stubModel) BindTools([]*schema.ToolInfo) error {
	return nil
}

func TestReplyRunsChain(t *testing.T) {
	stub := &stubModel{reply: "# 김치찌개\n## 재료"}
	svc, err := newService(context.Background(), stub, config.AIConfig{HistoryLimit: 10}, nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}

	history := []recipe.Message{recipe.UserMessage("q"), recipe.AssistantMessage("a")}
	got, err := svc.Reply(context.Background(), recipe.Profile{FoodType: "kimchi stew"}, history, "덜 맵게")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != stub.reply {
		t.Fatalf("unexpected reply %q", got)
	}

	// system + two history turns + query
	if len(stub.input) != 4 {
		t.Fatalf("expected 4 prompt messages, got %d", len(stub.input))
	}
	if stub.input[0].Role != schema.System || !strings.Contains(stub.input[0].Content, "알러지") {
		t.Fatalf("unexpected system message: %+v", stub.input[0])
	}
	if !strings.Contains(stub.input[3].Content, "덜 맵게") {
		t.Fatalf("query missing question: %q", stub.input[3].Content)
	}
}

func TestReplyStreamEmitsDeltas(t *testing.T) {
	stub := &stubModel{chunks: []string{"# 김치찌개\n", "## 재료\n", "- 김치"}}
	svc, err := newService(context.Background(), stub, config.AIConfig{HistoryLimit: 10}, nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}

	var deltas []string
	got, err := svc.ReplyStream(context.Background(), recipe.Profile{FoodType: "kimchi stew"}, nil, "알려줘", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ReplyStream: %v", err)
	}
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %d", len(deltas))
	}
	if got != "# 김치찌개\n## 재료\n- 김치" {
		t.Fatalf("unexpected full reply %q", got)
	}
}

func TestReplyStreamStopsWhenEmitFails(t *testing.T) {
	stub := &stubModel{chunks: []string{"a", "b"}}
	svc, err := newService(context.Background(), stub, config.AIConfig{HistoryLimit: 10}, nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}

	gone := errors.New("client gone")
	_, err = svc.ReplyStream(context.Background(), recipe.Profile{}, nil, "q", func(string) error { return gone })
	if !errors.Is(err, gone) {
		t.Fatalf("expected emit error, got %v", err)
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), config.AIConfig{Model: "doubao"}, nil)
	if err == nil {
		t.Fatal("NewService should fail without an API key or AK/SK pair")
	}
	if !strings.Contains(err.Error(), "ark credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}
