package recipe

// Status is the server-side lifecycle of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusFinalized Status = "finalized"
	StatusDeleted   Status = "deleted"
)

// SessionInfo is the metadata the backend keeps for a session.
type SessionInfo struct {
	Allergy      []string `json:"allergy"`
	Preferences  string   `json:"preferences"`
	CookingLevel string   `json:"cooking_level"`
	FoodType     string   `json:"food_type"`
	IsFinalized  bool     `json:"is_finalized"`
}

// Status derives the lifecycle status from the metadata.
func (i SessionInfo) Status() Status {
	if i.IsFinalized {
		return StatusFinalized
	}
	return StatusActive
}

// Clone returns a deep copy.
func (i *SessionInfo) Clone() *SessionInfo {
	if i == nil {
		return nil
	}
	c := *i
	c.Allergy = append([]string(nil), i.Allergy...)
	return &c
}

// FinalRecipe is the immutable artifact produced by finalizing a session.
type FinalRecipe struct {
	SessionID   string `json:"session_id"`
	Name        string `json:"recipe_name"`
	Content     string `json:"recipe_content"`
	ImagePrompt string `json:"image_prompt"`
	IsFinalized bool   `json:"is_finalized"`
}

// Clone returns a copy.
func (r *FinalRecipe) Clone() *FinalRecipe {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// InitResult is what the chat step needs from a freshly created session.
type InitResult struct {
	SessionID      string
	InitialMessage string
}

// ChatReply is the assistant's answer to one user message.
type ChatReply struct {
	Response string
	IsRecipe bool
}
