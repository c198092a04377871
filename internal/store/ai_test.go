package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
)

// fakeChatClient replays a canned reply and records what it was sent.
type fakeChatClient struct {
	reply       string
	err         error
	gotHistory  []models.ChatMessage
	gotMessage  string
	invocations int
}

func (f *fakeChatClient) Send(_ context.Context, history []models.ChatMessage, message string) (string, error) {
	f.invocations++
	f.gotHistory = history
	f.gotMessage = message
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newAIStore(t *testing.T, client ChatClient) *AIStore {
	t.Helper()
	s := NewAIStore(newTestBlob(t), client, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestSendAppendsBothMessages(t *testing.T) {
	client := &fakeChatClient{reply: "Aim for 150g of protein."}
	s := newAIStore(t, client)

	reply, err := s.Send(context.Background(), "how much protein?")
	require.NoError(t, err)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "Aim for 150g of protein.", reply.Content)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "how much protein?", msgs[0].Content)
	assert.Empty(t, client.gotHistory, "first send carries empty history")

	// Second turn carries the prior exchange as history.
	_, err = s.Send(context.Background(), "and carbs?")
	require.NoError(t, err)
	assert.Len(t, client.gotHistory, 2)
	assert.Equal(t, "and carbs?", client.gotMessage)
}

func TestSendKeepsUserMessageOnServiceFailure(t *testing.T) {
	client := &fakeChatClient{err: errors.New("service unavailable")}
	s := newAIStore(t, client)

	_, err := s.Send(context.Background(), "hello?")
	require.Error(t, err)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	client := &fakeChatClient{reply: "x"}
	s := newAIStore(t, client)

	_, err := s.Send(context.Background(), "   ")
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, client.invocations)
	assert.Empty(t, s.Messages())
}

func TestGoals(t *testing.T) {
	s := newAIStore(t, &fakeChatClient{})

	g, err := s.AddGoal(models.FitnessGoal{Title: "Run a 10k", TargetDate: "2026-10-01"})
	require.NoError(t, err)

	_, err = s.AddGoal(models.FitnessGoal{Title: "  "})
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.AddGoal(models.FitnessGoal{Title: "x", TargetDate: "soon"})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, s.AchieveGoal(g.ID))
	require.NoError(t, s.AchieveGoal(g.ID)) // idempotent
	require.ErrorIs(t, s.AchieveGoal("missing"), ErrNotFound)

	goals := s.Goals()
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Achieved)
}

func TestConversationSurvivesRestartAndClear(t *testing.T) {
	blob := newTestBlob(t)
	client := &fakeChatClient{reply: "ok"}

	s1 := NewAIStore(blob, client, zap.NewNop())
	_, err := s1.Send(context.Background(), "remember this")
	require.NoError(t, err)
	s1.Close()

	s2 := NewAIStore(blob, client, zap.NewNop())
	assert.Len(t, s2.Messages(), 2)
	s2.ClearConversation()
	assert.Empty(t, s2.Messages())
	s2.Close()
}
