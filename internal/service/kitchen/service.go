// Package kitchen is the in-memory recipe chat backend used for local
// development and end-to-end tests.
package kitchen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/pkg/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrEmptyMessage    = errors.New("message is required")
)

// Responder produces the assistant's answer for one turn.
type Responder interface {
	Reply(ctx context.Context, profile recipe.Profile, history []recipe.Message, question string) (string, error)
}

// StreamResponder is a Responder that can deliver its answer incrementally.
type StreamResponder interface {
	Responder
	ReplyStream(ctx context.Context, profile recipe.Profile, history []recipe.Message, question string, emit func(delta string) error) (string, error)
}

type lastRecipe struct {
	name    string
	content string
}

type session struct {
	profile   recipe.Profile
	history   []recipe.Message
	last      *lastRecipe
	final     *recipe.FinalRecipe
	createdAt time.Time
}

// Service keeps sessions, transcripts and recipes in memory.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	responder Responder
	logger    *zap.Logger
}

// NewService bootstraps the in-memory service. A nil responder falls back to
// TemplateResponder.
func NewService(responder Responder, log *zap.Logger) *Service {
	if responder == nil {
		responder = TemplateResponder{}
	}
	return &Service{
		sessions:  make(map[string]*session),
		responder: responder,
		logger:    logger.OrNop(log),
	}
}

// InitSession creates a session and asks for the first recipe of the
// requested dish.
func (s *Service) InitSession(ctx context.Context, profile recipe.Profile) (*recipe.InitResult, error) {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{
		profile:   profile,
		history:   make([]recipe.Message, 0, 16),
		createdAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	reply, err := s.Chat(ctx, id, fmt.Sprintf("%s 레시피를 알려줘", profile.FoodType))
	if err != nil {
		_ = s.Delete(ctx, id)
		return nil, err
	}

	s.logger.Info("session created", zap.String("session_id", id), zap.String("food_type", profile.FoodType))
	return &recipe.InitResult{SessionID: id, InitialMessage: reply.Response}, nil
}

// Chat records a user message and the assistant's reply. Replies that look
// like recipes become the candidate for finalization.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*recipe.ChatReply, error) {
	return s.exchange(ctx, sessionID, message, func(profile recipe.Profile, history []recipe.Message) (string, error) {
		return s.responder.Reply(ctx, profile, history, message)
	})
}

// ChatStream is Chat with the reply delivered to emit piece by piece. A
// responder that cannot stream yields the whole reply as one piece. Nothing
// is recorded unless the reply completes.
func (s *Service) ChatStream(ctx context.Context, sessionID, message string, emit func(delta string) error) (*recipe.ChatReply, error) {
	return s.exchange(ctx, sessionID, message, func(profile recipe.Profile, history []recipe.Message) (string, error) {
		if sr, ok := s.responder.(StreamResponder); ok {
			return sr.ReplyStream(ctx, profile, history, message, emit)
		}
		response, err := s.responder.Reply(ctx, profile, history, message)
		if err != nil {
			return "", err
		}
		return response, emit(response)
	})
}

func (s *Service) exchange(_ context.Context, sessionID, message string, generate func(recipe.Profile, []recipe.Message) (string, error)) (*recipe.ChatReply, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	var (
		profile recipe.Profile
		history []recipe.Message
	)
	if ok {
		profile = sess.profile
		history = recipe.CloneMessages(sess.history)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	response, err := generate(profile, history)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	isRecipe := IsRecipe(response)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.history = append(sess.history, recipe.UserMessage(message), recipe.AssistantMessage(response))
	if isRecipe {
		sess.last = &lastRecipe{name: ExtractName(response), content: response}
	}

	return &recipe.ChatReply{Response: response, IsRecipe: isRecipe}, nil
}

// History returns the transcript in order.
func (s *Service) History(_ context.Context, sessionID string) ([]recipe.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]recipe.Message, len(sess.history))
	copy(copied, sess.history)
	return copied, nil
}

// Info returns the session's profile and finalized flag.
func (s *Service) Info(_ context.Context, sessionID string) (*recipe.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &recipe.SessionInfo{
		Allergy:      sess.profile.Allergies(),
		Preferences:  sess.profile.Preferences,
		CookingLevel: string(sess.profile.CookingLevel),
		FoodType:     sess.profile.FoodType,
		IsFinalized:  sess.final != nil,
	}, nil
}

// Finalize freezes the latest recipe reply. When no reply was flagged as a
// recipe the transcript is searched from the end. Finalizing again returns
// the stored recipe unchanged.
func (s *Service) Finalize(_ context.Context, sessionID, confirmation string) (*recipe.FinalRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.final != nil {
		return sess.final.Clone(), nil
	}

	last := sess.last
	if last == nil {
		for i := len(sess.history) - 1; i >= 0; i-- {
			msg := sess.history[i]
			if msg.Role == recipe.RoleAssistant && IsRecipe(msg.Content) {
				last = &lastRecipe{name: ExtractName(msg.Content), content: msg.Content}
				break
			}
		}
	}
	if last == nil {
		return nil, ErrRecipeNotFound
	}

	sess.final = &recipe.FinalRecipe{
		SessionID:   sessionID,
		Name:        last.name,
		Content:     last.content,
		ImagePrompt: ImagePrompt(last.name),
		IsFinalized: true,
	}
	s.logger.Info("recipe finalized",
		zap.String("session_id", sessionID),
		zap.String("recipe_name", last.name),
		zap.Bool("confirmed", confirmation != ""),
	)
	return sess.final.Clone(), nil
}

// FinalRecipe returns the finalized recipe.
func (s *Service) FinalRecipe(_ context.Context, sessionID string) (*recipe.FinalRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.final == nil {
		return nil, ErrRecipeNotFound
	}
	return sess.final.Clone(), nil
}

// Delete drops the session and everything attached to it.
func (s *Service) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
