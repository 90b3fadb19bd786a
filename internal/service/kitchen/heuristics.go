package kitchen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// recipeKeywords mark a reply as a recipe: ingredients, method, cooking and
// prep vocabulary, and the common cooking verb stems.
var recipeKeywords = []string{"재료", "만드는 방법", "조리", "손질", "끓이", "볶", "굽", "찌"}

const defaultRecipeName = "레시피"

var nameReplacer = strings.NewReplacer("#", "", "*", "", "[", "", "]", "", "(", "", ")", "")

// IsRecipe reports whether a reply reads like a recipe.
func IsRecipe(response string) bool {
	for _, kw := range recipeKeywords {
		if strings.Contains(response, kw) {
			return true
		}
	}
	return false
}

// ExtractName takes the dish name from the first lines of a recipe.
func ExtractName(response string) string {
	lines := strings.Split(strings.TrimSpace(response), "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			continue
		}
		name := strings.TrimSpace(nameReplacer.Replace(line))
		if name != "" && utf8.RuneCountInString(name) < 50 {
			return name
		}
	}
	return defaultRecipeName
}

// ImagePrompt builds the text-to-image prompt for a finished dish.
func ImagePrompt(name string) string {
	return fmt.Sprintf("A beautifully plated %s, professional food photography, "+
		"warm lighting, appetizing presentation, high resolution, "+
		"top-down view, garnished elegantly", name)
}
