package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/handler"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
)

// withBackend points the commands at a fresh in-memory backend over HTTP.
func withBackend(t *testing.T) *kitchen.Service {
	t.Helper()
	svc := kitchen.NewService(nil, nil)
	srv := httptest.NewServer(handler.NewRouter(svc, nil, nil))

	log = zap.NewNop()
	cfg = nil
	offline = false
	apiURL = srv.URL
	t.Cleanup(func() {
		apiURL = ""
		srv.CloseClientConnections()
		srv.Close()
	})
	return svc
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func startSession(t *testing.T, svc *kitchen.Service) string {
	t.Helper()
	res, err := svc.InitSession(context.Background(), recipe.Profile{
		Allergy:      "peanut",
		Preferences:  "spicy",
		CookingLevel: recipe.LevelBeginner,
		FoodType:     "kimchi stew",
	})
	if err != nil {
		t.Fatalf("InitSession failed: %v", err)
	}
	return res.SessionID
}

func TestHealthCmd(t *testing.T) {
	withBackend(t)
	cmd, out := newTestCmd()

	if err := runHealth(cmd, nil); err != nil {
		t.Fatalf("runHealth failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "healthy" {
		t.Errorf("health = %q, want healthy", got)
	}
}

func TestAskCmdStreamsReply(t *testing.T) {
	svc := withBackend(t)
	id := startSession(t, svc)
	cmd, out := newTestCmd()

	if err := runAsk(cmd, []string{id, "less", "spicy"}); err != nil {
		t.Fatalf("runAsk failed: %v", err)
	}
	if !strings.Contains(out.String(), "요청하신 \"less spicy\"") {
		t.Errorf("reply should echo the joined request:\n%s", out.String())
	}

	history, err := svc.History(context.Background(), id)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 4 {
		t.Errorf("expected 4 messages after ask, got %d", len(history))
	}
}

func TestHistoryCmd(t *testing.T) {
	svc := withBackend(t)
	id := startSession(t, svc)
	cmd, out := newTestCmd()

	if err := runHistory(cmd, []string{id}); err != nil {
		t.Fatalf("runHistory failed: %v", err)
	}
	// The first turn is the seeded question, then the assistant's recipe.
	want := "[user]\nkimchi stew 레시피를 알려줘\n\n[assistant]\n# kimchi stew"
	if !strings.HasPrefix(out.String(), want) {
		t.Errorf("unexpected history output:\n%s", out.String())
	}
}

func TestInfoCmd(t *testing.T) {
	svc := withBackend(t)
	id := startSession(t, svc)
	cmd, out := newTestCmd()

	if err := runInfo(cmd, []string{id}); err != nil {
		t.Fatalf("runInfo failed: %v", err)
	}
	for _, want := range []string{`"status": "active"`, `"food_type": "kimchi stew"`, `"peanut"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output missing %s:\n%s", want, out.String())
		}
	}
}

func TestRecipeCmd(t *testing.T) {
	svc := withBackend(t)
	id := startSession(t, svc)
	cmd, out := newTestCmd()

	if err := runRecipe(cmd, []string{id}); err == nil {
		t.Fatal("runRecipe should fail before the session is finalized")
	}

	if _, err := svc.Finalize(context.Background(), id, ""); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := runRecipe(cmd, []string{id}); err != nil {
		t.Fatalf("runRecipe failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "kimchi stew\n") {
		t.Errorf("recipe output should start with the name:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Image prompt: ") {
		t.Errorf("recipe output missing image prompt:\n%s", out.String())
	}
}

func TestDeleteCmd(t *testing.T) {
	svc := withBackend(t)
	id := startSession(t, svc)
	cmd, _ := newTestCmd()

	if err := runDelete(cmd, []string{id}); err != nil {
		t.Fatalf("runDelete failed: %v", err)
	}

	err := runHistory(cmd, []string{id})
	if err == nil {
		t.Fatal("runHistory should fail for a deleted session")
	}
	if err.Error() != "세션을 찾을 수 없습니다." {
		t.Errorf("error = %q, want the backend detail", err.Error())
	}
}

func TestOfflineHealth(t *testing.T) {
	log = zap.NewNop()
	offline = true
	defer func() { offline = false }()
	cmd, out := newTestCmd()

	if err := runHealth(cmd, nil); err != nil {
		t.Fatalf("runHealth failed: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Error("offline health printed nothing")
	}
}
