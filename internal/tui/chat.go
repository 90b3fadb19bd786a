package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// chatView shows the transcript and the message input.
type chatView struct {
	input    textinput.Model
	viewport viewport.Model
	// rendered caches glamour output by message content.
	rendered map[string]string
}

func newChatView() chatView {
	ti := textinput.New()
	ti.Placeholder = "Ask for changes... (Enter to send)"
	ti.Prompt = "| "
	ti.CharLimit = 2000
	ti.Width = 76

	vp := viewport.New(80, 16)
	vp.SetContent("")

	return chatView{input: ti, viewport: vp, rendered: make(map[string]string)}
}

func (c chatView) resize(width, height int) chatView {
	c.viewport.Width = width
	c.viewport.Height = max(height-7, 3)
	c.input.Width = max(width-4, 10)
	return c
}

// setTranscript re-renders the transcript and scrolls to the newest message.
func (c chatView) setTranscript(messages []recipe.Message, r *glamour.TermRenderer) chatView {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case recipe.RoleUser:
			b.WriteString(UserStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		default:
			b.WriteString(AssistantStyle.Render("Chef"))
			b.WriteString("\n")
			out, ok := c.rendered[msg.Content]
			if !ok {
				out = safeRenderMarkdown(r, msg.Content)
				c.rendered[msg.Content] = out
			}
			b.WriteString(strings.TrimRight(out, "\n"))
			b.WriteString("\n\n")
		}
	}
	c.viewport.SetContent(b.String())
	c.viewport.GotoBottom()
	return c
}

func (c chatView) view(loading bool, spin, errText string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Recipe chat"))
	b.WriteString("\n")
	b.WriteString(c.viewport.View())
	b.WriteString("\n")
	if loading {
		b.WriteString(spin + " Chef is thinking...")
	}
	b.WriteString("\n")
	if errText != "" {
		b.WriteString(ErrorStyle.Render(errText))
	}
	b.WriteString("\n")
	b.WriteString(c.input.View())
	b.WriteString("\n")
	b.WriteString(footer("enter", "send", "ctrl+f", "finalize", "ctrl+r", "reload", "ctrl+n", "new recipe", "esc", "dismiss error"))
	return b.String()
}

// safeRenderMarkdown falls back to the raw text when glamour is unavailable
// or fails.
func safeRenderMarkdown(r *glamour.TermRenderer, content string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			result = content
		}
	}()

	if r != nil && content != "" {
		rendered, err := r.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
