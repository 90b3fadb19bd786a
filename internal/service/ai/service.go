package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/config"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/pkg/logger"
)

// Service answers recipe questions with a chat model.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	logger    *zap.Logger
}

// NewService builds the Ark chat model from cfg and compiles the prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*Service, error) {
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newService(ctx, chatModel, cfg, log)
}

func newService(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig, log *zap.Logger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
		logger:    logger.OrNop(log),
	}, nil
}

// Reply runs one conversation turn. It satisfies kitchen.Responder.
func (s *Service) Reply(ctx context.Context, profile recipe.Profile, history []recipe.Message, question string) (string, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(),
		"history": buildHistoryMessages(history, s.cfg.HistoryLimit),
		"query":   buildQuery(profile, question),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	s.logger.Debug("generated reply",
		zap.String("food_type", profile.FoodType),
		zap.Int("history", len(history)),
		zap.Int("length", len(response.Content)),
	)
	return response.Content, nil
}

// ReplyStream runs one turn and calls emit with each content delta as the
// model produces it. The full reply is returned once the stream ends.
func (s *Service) ReplyStream(ctx context.Context, profile recipe.Profile, history []recipe.Message, question string, emit func(delta string) error) (string, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(),
		"history": buildHistoryMessages(history, s.cfg.HistoryLimit),
		"query":   buildQuery(profile, question),
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			if err := emit(chunk.Content); err != nil {
				return "", err
			}
		}
	}
	if len(chunks) == 0 {
		return "", nil
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

func buildHistoryMessages(messages []recipe.Message, limit int) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}

	startIdx := 0
	if len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case recipe.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case recipe.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
