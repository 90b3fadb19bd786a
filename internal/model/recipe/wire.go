package recipe

// JSON bodies of the /recipeChat backend contract.

// BasePath is the namespace all session endpoints live under.
const BasePath = "/recipeChat"

type InitSessionRequest = Profile

type InitSessionResponse struct {
	SessionID      string `json:"session_id"`
	InitialMessage string `json:"initial_message"`
	Message        string `json:"message"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	IsRecipe  bool   `json:"is_recipe"`
}

type ChatHistoryResponse struct {
	SessionID string    `json:"session_id"`
	History   []Message `json:"history"`
}

type FinalizeRequest struct {
	UserConfirmation string `json:"user_confirmation"`
}

// FinalRecipeResponse is shared by finalize and get-recipe.
type FinalRecipeResponse = FinalRecipe

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries the user-facing failure text.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Frame types sent on the chat websocket.
const (
	FrameDelta   = "delta"
	FrameMessage = "message"
	FrameError   = "error"
)

// StreamFrame is one server frame on /chat/{session_id}/ws. The client sends
// ChatRequest frames; each is answered by delta frames and then one message
// frame carrying the whole reply, or by an error frame.
type StreamFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsRecipe  bool   `json:"is_recipe,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
