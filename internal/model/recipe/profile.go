package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// CookingLevel 描述用户的烹饪熟练度。
type CookingLevel string

const (
	LevelBeginner     CookingLevel = "beginner"
	LevelIntermediate CookingLevel = "intermediate"
	LevelAdvanced     CookingLevel = "advanced"
)

// Levels lists the accepted cooking levels in display order.
func Levels() []CookingLevel {
	return []CookingLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Valid reports whether the level is one the backend accepts.
func (l CookingLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

var (
	// ErrFoodTypeRequired is returned when a profile has no target dish.
	ErrFoodTypeRequired = errors.New("food type is required")
	// ErrInvalidCookingLevel is returned for a level outside Levels().
	ErrInvalidCookingLevel = errors.New("invalid cooking level")
)

// Profile captures the dietary constraints collected by the form step.
type Profile struct {
	Allergy      string       `json:"allergy"`
	Preferences  string       `json:"preferences"`
	CookingLevel CookingLevel `json:"cooking_level"`
	FoodType     string       `json:"food_type"`
}

// Normalize trims fields and fills the default cooking level.
func (p Profile) Normalize() Profile {
	p.Allergy = strings.TrimSpace(p.Allergy)
	p.Preferences = strings.TrimSpace(p.Preferences)
	p.FoodType = strings.TrimSpace(p.FoodType)
	p.CookingLevel = CookingLevel(strings.ToLower(strings.TrimSpace(string(p.CookingLevel))))
	if p.CookingLevel == "" {
		p.CookingLevel = LevelBeginner
	}
	return p
}

// Validate checks a normalized profile.
func (p Profile) Validate() error {
	if p.FoodType == "" {
		return ErrFoodTypeRequired
	}
	if !p.CookingLevel.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidCookingLevel, p.CookingLevel)
	}
	return nil
}

// Allergies splits the free-text allergy field into a list.
func (p Profile) Allergies() []string {
	parts := strings.Split(p.Allergy, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
