package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

const aiBlobName = "ai"

// ChatClient is the opaque AI chat collaborator: conversation history plus
// a user message in, a reply string out.
type ChatClient interface {
	Send(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

type aiState struct {
	Messages []models.ChatMessage `json:"messages"`
	Goals    []models.FitnessGoal `json:"goals"`
}

// AIStore owns the assistant conversation and the user's fitness goals.
type AIStore struct {
	mu    sync.Mutex
	state aiState

	client ChatClient
	blob   *persistence.Blob
	saver  *saver
	log    *zap.Logger
}

// NewAIStore hydrates the store from persistence.
func NewAIStore(blob *persistence.Blob, client ChatClient, log *zap.Logger) *AIStore {
	s := &AIStore{blob: blob, client: client, log: log, saver: newSaver(aiBlobName, log)}
	_ = blob.Load(aiBlobName, &s.state)
	return s
}

// Send appends the user message, calls the chat service, and appends the
// reply. On a service failure the user message is kept and the error is
// returned for the UI to surface.
func (s *AIStore) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, validationErr("message must not be empty")
	}

	s.mu.Lock()
	history := append([]models.ChatMessage(nil), s.state.Messages...)
	userMsg := models.ChatMessage{
		ID:      uuid.NewString(),
		Role:    "user",
		Content: text,
		SentAt:  time.Now(),
	}
	s.state.Messages = append(s.state.Messages, userMsg)
	s.persistLocked()
	s.mu.Unlock()

	reply, err := s.client.Send(ctx, history, text)
	if err != nil {
		s.log.Warn("chat service call failed", zap.Error(err))
		return models.ChatMessage{}, fmt.Errorf("chat service: %w", err)
	}

	assistantMsg := models.ChatMessage{
		ID:      uuid.NewString(),
		Role:    "assistant",
		Content: reply,
		SentAt:  time.Now(),
	}
	s.mu.Lock()
	s.state.Messages = append(s.state.Messages, assistantMsg)
	s.persistLocked()
	s.mu.Unlock()
	return assistantMsg, nil
}

// Messages returns the conversation history, oldest first.
func (s *AIStore) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.state.Messages...)
}

// ClearConversation discards the chat history, keeping goals.
func (s *AIStore) ClearConversation() {
	s.mu.Lock()
	s.state.Messages = nil
	s.persistLocked()
	s.mu.Unlock()
}

// AddGoal records a fitness goal.
func (s *AIStore) AddGoal(g models.FitnessGoal) (models.FitnessGoal, error) {
	if strings.TrimSpace(g.Title) == "" {
		return models.FitnessGoal{}, validationErr("goal title must not be empty")
	}
	if g.TargetDate != "" {
		if _, err := time.Parse(models.DateLayout, g.TargetDate); err != nil {
			return models.FitnessGoal{}, validationErr("goal target date %q is not %s", g.TargetDate, models.DateLayout)
		}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.state.Goals = append(s.state.Goals, g)
	s.persistLocked()
	s.mu.Unlock()
	return g, nil
}

// AchieveGoal marks a goal achieved. Already-achieved goals are a no-op.
func (s *AIStore) AchieveGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Goals {
		if s.state.Goals[i].ID == id {
			if !s.state.Goals[i].Achieved {
				s.state.Goals[i].Achieved = true
				s.persistLocked()
			}
			return nil
		}
	}
	return ErrNotFound
}

// Goals returns a copy of all fitness goals.
func (s *AIStore) Goals() []models.FitnessGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FitnessGoal(nil), s.state.Goals...)
}

// Errs exposes asynchronous persistence failures.
func (s *AIStore) Errs() <-chan error {
	return s.saver.errors()
}

// Close drains pending persistence writes.
func (s *AIStore) Close() {
	s.saver.close()
}

func (s *AIStore) persistLocked() {
	snapshot := aiState{
		Messages: append([]models.ChatMessage(nil), s.state.Messages...),
		Goals:    append([]models.FitnessGoal(nil), s.state.Goals...),
	}
	s.saver.enqueue(func() error {
		return s.blob.Save(aiBlobName, snapshot)
	})
}
