// Package chat drives the client side of a recipe chat session:
// init, message exchange with optimistic updates, finalize and result.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aicookbook/recipechat/internal/handoff"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/pkg/logger"
)

// Backend is the subset of the recipe API the orchestrator needs.
// *client.Client implements it.
type Backend interface {
	InitSession(ctx context.Context, profile recipe.Profile) (*recipe.InitResult, error)
	SendMessage(ctx context.Context, sessionID, text string) (*recipe.ChatReply, error)
	GetHistory(ctx context.Context, sessionID string) ([]recipe.Message, error)
	GetSessionInfo(ctx context.Context, sessionID string) (*recipe.SessionInfo, error)
	Finalize(ctx context.Context, sessionID, confirmation string) (*recipe.FinalRecipe, error)
	GetFinalRecipe(ctx context.Context, sessionID string) (*recipe.FinalRecipe, error)
	DeleteSession(ctx context.Context, sessionID string) (string, error)
}

// Orchestrator owns one session's state machine. All operations run in
// submission order on a single worker goroutine, so a send never interleaves
// with a history reload or another send.
type Orchestrator struct {
	backend Backend
	store   *Store
	logger  *zap.Logger

	tasks     chan task
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type task struct {
	ctx    context.Context
	name   string
	run    func(ctx context.Context) error
	result chan error
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger.OrNop(l)
	}
}

// WithStore lets the caller supply the store the views read from.
func WithStore(s *Store) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.store = s
		}
	}
}

// NewOrchestrator starts an orchestrator in the Uninitialized phase.
// Call Close to stop its worker.
func NewOrchestrator(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		store:   NewStore(),
		logger:  zap.NewNop(),
		tasks:   make(chan task),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.wg.Add(1)
	go o.loop()
	return o
}

// Store exposes the state for rendering.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Close stops the worker. Operations already running finish first; later
// calls return ErrClosed.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.quit)
	})
	o.wg.Wait()
}

func (o *Orchestrator) loop() {
	defer o.wg.Done()
	for {
		select {
		case <-o.quit:
			return
		case t := <-o.tasks:
			if err := t.ctx.Err(); err != nil {
				t.result <- err
				continue
			}
			t.result <- o.runTask(t)
		}
	}
}

func (o *Orchestrator) runTask(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: unexpected failure: %v", t.name, r)
			o.logger.Error("operation panicked", zap.String("op", t.name), zap.Any("panic", r))
			o.store.apply(func(s State) State { return s.fail(err) })
		}
	}()
	return t.run(t.ctx)
}

// submit queues fn and waits for it to finish. A context cancelled while
// waiting in the queue aborts the call without running it.
func (o *Orchestrator) submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	t := task{ctx: ctx, name: name, run: fn, result: make(chan error, 1)}
	select {
	case o.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-o.quit:
		return ErrClosed
	}
	return <-t.result
}

// reject records a failure that happened before any network call.
func (o *Orchestrator) reject(op string, err error) error {
	o.logger.Debug("operation rejected",
		zap.String("op", op),
		zap.String("session_id", o.store.SessionID()),
		zap.Error(err),
	)
	o.store.apply(func(s State) State { return s.fail(err) })
	return err
}

// failed records a backend failure.
func (o *Orchestrator) failed(op, sessionID string, err error) error {
	o.logger.Warn("operation failed",
		zap.String("op", op),
		zap.String("session_id", sessionID),
		zap.Error(err),
	)
	o.store.apply(func(s State) State { return s.fail(err) })
	return err
}

func invalid(op string, phase Phase) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, phase)
}

// Init creates a backend session for the profile and seeds the transcript with
// the assistant's first message. On failure the phase stays Uninitialized.
func (o *Orchestrator) Init(ctx context.Context, profile recipe.Profile) (*recipe.InitResult, error) {
	const op = "init"
	var out *recipe.InitResult

	err := o.submit(ctx, op, func(ctx context.Context) error {
		if phase := o.store.Phase(); phase != PhaseUninitialized {
			return o.reject(op, invalid(op, phase))
		}

		profile = profile.Normalize()
		if err := profile.Validate(); err != nil {
			return o.reject(op, err)
		}

		o.store.apply(State.begin)
		res, err := o.backend.InitSession(ctx, profile)
		if err != nil {
			return o.failed(op, "", err)
		}
		if res == nil || res.SessionID == "" {
			return o.failed(op, "", fmt.Errorf("%w: backend returned no session id", ErrNoSession))
		}

		o.store.apply(func(s State) State { return s.initialized(*res).done() })
		o.logger.Info("session initialized",
			zap.String("session_id", res.SessionID),
			zap.String("food_type", profile.FoodType),
		)
		out = res
		return nil
	})
	return out, err
}

// Adopt enters the Active phase for a session created elsewhere, such as the
// form step handing its session over to the chat step.
func (o *Orchestrator) Adopt(ctx context.Context, h handoff.Chat) error {
	const op = "adopt"
	return o.submit(ctx, op, func(ctx context.Context) error {
		if err := h.Validate(); err != nil {
			return o.reject(op, err)
		}

		snap := o.store.Snapshot()
		if snap.Phase != PhaseUninitialized {
			if snap.SessionID == h.SessionID {
				return nil
			}
			return o.reject(op, invalid(op, snap.Phase))
		}

		o.store.apply(func(s State) State { return s.adopted(h).clearErr() })
		o.logger.Debug("session adopted", zap.String("session_id", h.SessionID))
		return nil
	})
}

// SendMessage appends the user's message immediately, then the assistant's
// reply once the backend answers. If the call fails the user message is
// removed again and the transcript is exactly what it was before.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (*recipe.ChatReply, error) {
	const op = "send_message"
	var out *recipe.ChatReply

	err := o.submit(ctx, op, func(ctx context.Context) error {
		snap := o.store.Snapshot()
		if snap.SessionID == "" {
			return o.reject(op, ErrNoSession)
		}
		if snap.Phase != PhaseActive {
			return o.reject(op, invalid(op, snap.Phase))
		}

		text := strings.TrimSpace(text)
		if text == "" {
			return o.reject(op, ErrEmptyMessage)
		}

		var opID uint64
		o.store.apply(func(s State) State {
			s, opID = s.begin().appendOptimistic(recipe.UserMessage(text))
			return s
		})
		// Undo runs at most once, so this is a no-op after commit or an
		// explicit rollback. It covers a panicking backend.
		defer o.store.apply(func(s State) State { return s.rollback(opID) })

		reply, err := o.backend.SendMessage(ctx, snap.SessionID, text)
		if err == nil && reply == nil {
			err = fmt.Errorf("%s: %w", op, ErrEmptyResponse)
		}
		if err != nil {
			o.store.apply(func(s State) State { return s.rollback(opID) })
			return o.failed(op, snap.SessionID, err)
		}

		o.store.apply(func(s State) State {
			return s.commit(opID).appendConfirmed(recipe.AssistantMessage(reply.Response)).done()
		})
		o.logger.Debug("message exchanged",
			zap.String("session_id", snap.SessionID),
			zap.Bool("is_recipe", reply.IsRecipe),
		)
		out = reply
		return nil
	})
	return out, err
}

// Finalize asks the backend to freeze the current recipe. It is allowed again
// once Finalized; the backend returns the same recipe.
func (o *Orchestrator) Finalize(ctx context.Context, confirmation string) (*recipe.FinalRecipe, error) {
	const op = "finalize"
	var out *recipe.FinalRecipe

	err := o.submit(ctx, op, func(ctx context.Context) error {
		snap := o.store.Snapshot()
		if snap.SessionID == "" {
			return o.reject(op, ErrNoSession)
		}

		o.store.apply(State.begin)
		r, err := o.backend.Finalize(ctx, snap.SessionID, confirmation)
		if err == nil && r == nil {
			err = fmt.Errorf("%s: %w", op, ErrEmptyResponse)
		}
		if err != nil {
			return o.failed(op, snap.SessionID, err)
		}

		o.store.apply(func(s State) State { return s.finalized(r).done() })
		o.logger.Info("recipe finalized",
			zap.String("session_id", snap.SessionID),
			zap.String("recipe_name", r.Name),
		)
		out = r.Clone()
		return nil
	})
	return out, err
}

// Refetch re-reads the final recipe and refreshes the cached copy.
func (o *Orchestrator) Refetch(ctx context.Context) (*recipe.FinalRecipe, error) {
	const op = "refetch"
	var out *recipe.FinalRecipe

	err := o.submit(ctx, op, func(ctx context.Context) error {
		snap := o.store.Snapshot()
		if snap.SessionID == "" {
			return o.reject(op, ErrNoSession)
		}
		if snap.Phase != PhaseFinalized {
			return o.reject(op, invalid(op, snap.Phase))
		}

		o.store.apply(State.begin)
		r, err := o.backend.GetFinalRecipe(ctx, snap.SessionID)
		if err == nil && r == nil {
			err = fmt.Errorf("%s: %w", op, ErrEmptyResponse)
		}
		if err != nil {
			return o.failed(op, snap.SessionID, err)
		}

		o.store.apply(func(s State) State { return s.refetched(r).done() })
		out = r.Clone()
		return nil
	})
	return out, err
}

// LoadHistory fetches metadata and transcript and replaces the local copies
// wholesale. Optimistic messages the backend does not know about are lost.
func (o *Orchestrator) LoadHistory(ctx context.Context) error {
	const op = "load_history"
	return o.submit(ctx, op, func(ctx context.Context) error {
		sessionID := o.store.SessionID()
		if sessionID == "" {
			return o.reject(op, ErrNoSession)
		}

		o.store.apply(State.begin)

		var (
			info    *recipe.SessionInfo
			history []recipe.Message
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			info, err = o.backend.GetSessionInfo(gctx, sessionID)
			return err
		})
		g.Go(func() error {
			var err error
			history, err = o.backend.GetHistory(gctx, sessionID)
			return err
		})
		if err := g.Wait(); err != nil {
			return o.failed(op, sessionID, err)
		}

		o.store.apply(func(s State) State { return s.reconciled(info, history).done() })
		o.logger.Debug("history reloaded",
			zap.String("session_id", sessionID),
			zap.Int("messages", len(history)),
		)
		return nil
	})
}

// Delete removes the session on the backend and returns to Uninitialized.
func (o *Orchestrator) Delete(ctx context.Context) (string, error) {
	const op = "delete"
	var ack string

	err := o.submit(ctx, op, func(ctx context.Context) error {
		sessionID := o.store.SessionID()
		if sessionID == "" {
			return o.reject(op, ErrNoSession)
		}

		o.store.apply(State.begin)
		msg, err := o.backend.DeleteSession(ctx, sessionID)
		if err != nil {
			return o.failed(op, sessionID, err)
		}

		o.store.apply(State.reset)
		o.logger.Info("session deleted", zap.String("session_id", sessionID))
		ack = msg
		return nil
	})
	return ack, err
}

// Reset forgets the session locally, as when the user navigates away.
func (o *Orchestrator) Reset(ctx context.Context) error {
	return o.submit(ctx, "reset", func(context.Context) error {
		o.store.apply(State.reset)
		return nil
	})
}

// ClearError dismisses the displayed error.
func (o *Orchestrator) ClearError() {
	o.store.apply(State.clearErr)
}
