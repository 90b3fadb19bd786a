// Package tui is the terminal front end: a form step that creates the
// session, a chat step that refines the recipe and a result step that shows
// the finalized recipe.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/service/chat"
	"github.com/aicookbook/recipechat/pkg/logger"
)

// Model is the root bubbletea model. It only reads session state from the
// orchestrator's store and asks the orchestrator to act.
type Model struct {
	orch        *chat.Orchestrator
	ctx         context.Context
	updates     <-chan struct{}
	unsubscribe func()
	renderer    *glamour.TermRenderer
	logger      *zap.Logger

	step   Step
	state  chat.State
	notice string

	form    formView
	chat    chatView
	result  resultView
	spinner spinner.Model

	width  int
	height int
}

// Option customizes a Model.
type Option func(*Model)

// WithRenderer sets the markdown renderer. A nil renderer shows raw markdown.
func WithRenderer(r *glamour.TermRenderer) Option {
	return func(m *Model) { m.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.logger = logger.OrNop(l) }
}

// WithContext sets the context passed to orchestrator calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// DefaultRenderer builds the glamour renderer used by the cookbook command.
func DefaultRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// New creates the root model on the form step.
func New(orch *chat.Orchestrator, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	m := Model{
		orch:    orch,
		ctx:     context.Background(),
		logger:  zap.NewNop(),
		step:    StepForm,
		state:   orch.Store().Snapshot(),
		form:    newFormView(),
		chat:    newChatView(),
		result:  newResultView(),
		spinner: sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.updates, m.unsubscribe = orch.Store().Subscribe()
	return m
}

// Step returns the step being shown.
func (m Model) Step() Step {
	return m.step
}

// Close stops listening to the store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the cursor blink, the spinner and the store subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.updates))
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			m.Close()
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat = m.chat.resize(msg.Width, msg.Height)
		m.result = m.result.resize(msg.Width, msg.Height)
		return m.refresh(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateChangedMsg:
		return m.refresh(), waitForChange(m.updates)

	case NavigateMsg:
		return m.navigate(msg)

	case InitDoneMsg:
		m = m.refresh()
		if msg.Err != nil {
			return m, nil
		}
		return m, navigateCmd(NavigateMsg{
			To:   StepChat,
			Chat: &handoff.Chat{SessionID: msg.Result.SessionID, InitialMessage: msg.Result.InitialMessage},
		})

	case SendDoneMsg:
		return m.refresh(), nil

	case FinalizeDoneMsg:
		m = m.refresh()
		if msg.Err != nil {
			return m, nil
		}
		return m, navigateCmd(NavigateMsg{
			To:     StepResult,
			Result: &handoff.Result{SessionID: msg.SessionID, Recipe: msg.Recipe},
		})

	case RefetchDoneMsg:
		m = m.refresh()
		if msg.Err == nil && msg.Recipe != nil {
			m.result = m.result.setRecipe(msg.Recipe, m.renderer)
		}
		return m, nil

	case OpDoneMsg:
		if msg.Err != nil {
			m.logger.Debug("operation failed", zap.String("op", msg.Op), zap.Error(msg.Err))
		}
		return m.refresh(), nil
	}

	return m, nil
}

// refresh copies the store state into the model and re-renders the transcript.
func (m Model) refresh() Model {
	m.state = m.orch.Store().Snapshot()
	m.chat = m.chat.setTranscript(m.state.Transcript, m.renderer)
	return m
}

func (m Model) navigate(msg NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.To {
	case StepChat:
		if err := msg.Chat.Validate(); err != nil {
			m.logger.Warn("chat step entered without session", zap.Error(err))
			return m.navigate(NavigateMsg{To: StepForm, Notice: handoff.Notice})
		}
		m.step = StepChat
		m.notice = ""
		m.chat.input.Reset()
		cmd := m.chat.input.Focus()
		return m, tea.Batch(cmd, adoptCmd(m.ctx, m.orch, *msg.Chat))

	case StepResult:
		m.step = StepResult
		m.notice = ""
		m.chat.input.Blur()
		m.result.handoff = msg.Result
		if msg.Result != nil && msg.Result.Recipe != nil {
			m.result = m.result.setRecipe(msg.Result.Recipe, m.renderer)
		}
		return m, nil

	default:
		m.step = StepForm
		m.notice = msg.Notice
		m.chat.input.Blur()
		m.form = newFormView()
		return m, resetCmd(m.ctx, m.orch)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.step {
	case StepChat:
		return m.handleChatKey(msg)
	case StepResult:
		return m.handleResultKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submit := m.form.update(msg)
	m.form = form
	if !submit {
		return m, cmd
	}
	if m.state.Loading {
		return m, nil
	}
	m.notice = ""
	return m, initCmd(m.ctx, m.orch, m.form.profile())
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter:
		text := strings.TrimSpace(m.chat.input.Value())
		if text == "" || m.state.Loading {
			return m, nil
		}
		m.chat.input.Reset()
		return m, sendCmd(m.ctx, m.orch, text)
	case KeyFinalize:
		if m.state.Loading {
			return m, nil
		}
		return m, finalizeCmd(m.ctx, m.orch)
	case KeyReload:
		return m, loadHistoryCmd(m.ctx, m.orch)
	case KeyNewRecipe:
		return m.navigate(NavigateMsg{To: StepForm})
	case KeyEsc:
		m.orch.ClearError()
		return m.refresh(), nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat.viewport, cmd = m.chat.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit:
		m.Close()
		return m, tea.Quit
	case KeyNew:
		return m.navigate(NavigateMsg{To: StepForm})
	case KeyRefetch:
		if m.result.missing() {
			return m, nil
		}
		return m, refetchCmd(m.ctx, m.orch)
	}

	var cmd tea.Cmd
	m.result.viewport, cmd = m.result.viewport.Update(msg)
	return m, cmd
}

// View renders the current step.
func (m Model) View() string {
	spin := m.spinner.View()
	switch m.step {
	case StepChat:
		return m.chat.view(m.state.Loading, spin, m.state.Err)
	case StepResult:
		return m.result.view(m.state.Loading, spin, m.state.Err)
	default:
		return m.form.view(m.state.Loading, spin, m.state.Err, m.notice)
	}
}
