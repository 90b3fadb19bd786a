package ai

import (
	"strings"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// systemRules 约束模型只回答烹饪相关问题，并输出完整的食谱。
var systemRules = []string{
	"당신은 요리 전문가입니다. 초보자도 따라할 수 있도록 레시피를 쉽고 정확하게 알려주세요.",
	"정확한 용량(g, ml, 숟가락 등)을 명시하세요.",
	"재료 손질 시 크기(cm 등) 또는 손질 방법을 명시하세요.",
	"조리 과정마다 상세한 시간을 안내하세요.",
	"알러지가 있는 식재료는 어떤 요청에도 절대 포함하지 마세요.",
	"사용자의 특이사항과 요리 레벨을 반영하세요.",
	"요리와 관련 없는 질문에는 답변하지 마세요.",
	"레시피를 제공할 때는 첫 줄에 요리 이름을, 바로 아래에 전체 조리 시간과 몇 인분인지 적으세요.",
	"이전 답변에서 바뀐 점이 있어도 전체 레시피를 다시 출력하세요.",
}

var levelNames = map[recipe.CookingLevel]string{
	recipe.LevelBeginner:     "초보",
	recipe.LevelIntermediate: "중급",
	recipe.LevelAdvanced:     "고급",
}

func buildSystemPrompt() string {
	return strings.Join(systemRules, "\n")
}

// buildQuery wraps the question with the session profile.
func buildQuery(profile recipe.Profile, question string) string {
	allergy := "없음"
	if list := profile.Allergies(); len(list) > 0 {
		allergy = strings.Join(list, ", ")
	}

	preferences := profile.Preferences
	if preferences == "" {
		preferences = "없음"
	}

	level, ok := levelNames[profile.CookingLevel]
	if !ok {
		level = levelNames[recipe.LevelBeginner]
	}

	var b strings.Builder
	b.WriteString("다음 정보를 참고해서 질문에 답변해줘.\n\n")
	b.WriteString("[알러지]\n" + allergy + "\n\n")
	b.WriteString("[특이사항]\n" + preferences + "\n\n")
	b.WriteString("[요리 레벨]\n" + level + "\n\n")
	b.WriteString("[질문]\n" + question)
	return b.String()
}
