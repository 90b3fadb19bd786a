package kitchen

import (
	"context"
	"fmt"
	"strings"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// TemplateResponder answers without a language model. Every reply is a full
// recipe for the profile's dish that leaves out the listed allergens, so the
// backend stays usable offline.
type TemplateResponder struct{}

var thanksWords = []string{"고마워", "감사", "thank", "thanks"}

var levelTimes = map[recipe.CookingLevel]string{
	recipe.LevelBeginner:     "40분",
	recipe.LevelIntermediate: "30분",
	recipe.LevelAdvanced:     "25분",
}

// Reply implements Responder.
func (TemplateResponder) Reply(_ context.Context, profile recipe.Profile, history []recipe.Message, question string) (string, error) {
	lower := strings.ToLower(question)
	for _, w := range thanksWords {
		if strings.Contains(lower, w) {
			return "맛있게 드세요! 다른 요청이 있으면 말씀해 주세요.", nil
		}
	}

	dish := profile.FoodType
	if dish == "" {
		dish = "오늘의 요리"
	}
	cookTime, ok := levelTimes[profile.CookingLevel]
	if !ok {
		cookTime = levelTimes[recipe.LevelBeginner]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", dish)
	fmt.Fprintf(&b, "조리 시간 %s · 2인분\n\n", cookTime)

	if len(history) > 0 {
		fmt.Fprintf(&b, "요청하신 \"%s\" 내용을 반영했습니다.\n\n", question)
	}
	if allergies := profile.Allergies(); len(allergies) > 0 {
		fmt.Fprintf(&b, "알러지 재료(%s)는 사용하지 않았습니다.\n\n", strings.Join(allergies, ", "))
	}
	if profile.Preferences != "" {
		fmt.Fprintf(&b, "선호 사항: %s\n\n", profile.Preferences)
	}

	b.WriteString("## 재료\n")
	b.WriteString("- 주재료 300g\n- 양파 1/2개 (1cm 채썰기)\n- 대파 1대 (0.5cm 송송 썰기)\n- 다진 마늘 1숟가락\n- 물 500ml\n\n")
	b.WriteString("## 만드는 방법\n")
	b.WriteString("1. 재료를 손질해 준비합니다. (5분)\n")
	b.WriteString("2. 냄비에 기름을 두르고 양파와 마늘을 중불에서 2분간 볶습니다.\n")
	b.WriteString("3. 주재료와 물을 넣고 15분간 끓입니다.\n")
	b.WriteString("4. 대파를 넣고 간을 맞춘 뒤 3분 더 끓여 마무리합니다.\n")
	return b.String(), nil
}

// ReplyStream emits the templated reply one line at a time.
func (t TemplateResponder) ReplyStream(ctx context.Context, profile recipe.Profile, history []recipe.Message, question string, emit func(delta string) error) (string, error) {
	response, err := t.Reply(ctx, profile, history, question)
	if err != nil {
		return "", err
	}
	for _, line := range strings.SplitAfter(response, "\n") {
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := emit(line); err != nil {
			return "", err
		}
	}
	return response, nil
}
