// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// answerMock implements Answerer.
type answerMock struct {
	answer string
	err    error
}

func (m *answerMock) RAGChat(_ context.Context, projectID, query string) (string, error) {
	return m.answer, m.err
}

func TestNewLogSeedsWelcome(t *testing.T) {
	l := NewLog(nil)
	messages := l.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, types.RoleSystem, messages[0].Role)
	assert.Equal(t, WelcomeMessage, messages[0].Content)
}

func TestNewLogKeepsExistingTranscript(t *testing.T) {
	existing := []types.ChatMessage{
		{Role: types.RoleSystem, Content: WelcomeMessage},
		{Role: types.RoleUser, Content: "Q1"},
		{Role: types.RoleSystem, Content: "A1"},
	}
	l := NewLog(existing)
	assert.Len(t, l.Messages(), 3)
}

func TestAppendAddsUserMessageAndPlaceholder(t *testing.T) {
	l := NewLog(nil)
	seq := l.Append("What methods were compared?")

	messages := l.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, types.RoleUser, messages[1].Role)
	assert.Equal(t, "What methods were compared?", messages[1].Content)
	assert.Equal(t, Thinking, messages[2].Content)
	assert.Equal(t, seq, messages[2].Seq)
}

func TestResolveReplacesMatchingPlaceholderInPlace(t *testing.T) {
	l := NewLog(nil)
	first := l.Append("Q1")
	second := l.Append("Q2")

	// Answers arrive out of order; each settles its own placeholder.
	l.Resolve(second, "A2")
	l.Resolve(first, "A1")

	messages := l.Messages()
	require.Len(t, messages, 5)
	assert.Equal(t, "Q1", messages[1].Content)
	assert.Equal(t, "A1", messages[2].Content)
	assert.Equal(t, "Q2", messages[3].Content)
	assert.Equal(t, "A2", messages[4].Content)
	for _, m := range messages {
		assert.Zero(t, m.Seq, "settled messages carry no tag")
	}
}

func TestFailKeepsEntryWithErrorText(t *testing.T) {
	l := NewLog(nil)
	seq := l.Append("Q1")
	l.Fail(seq)

	messages := l.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, ErrRequestFail, messages[2].Content)
}

func TestResolveUnknownTagIsIgnored(t *testing.T) {
	l := NewLog(nil)
	seq := l.Append("Q1")
	l.Resolve(999, "stray answer")

	messages := l.Messages()
	assert.Equal(t, Thinking, messages[2].Content)
	assert.Equal(t, seq, messages[2].Seq)
}

func TestAskSuccess(t *testing.T) {
	l := NewLog(nil)
	answer := l.Ask(context.Background(), &answerMock{answer: "Transformers and SVMs."}, "p1", "Q1")

	assert.Equal(t, "Transformers and SVMs.", answer)
	messages := l.Messages()
	assert.Equal(t, "Transformers and SVMs.", messages[2].Content)
}

func TestAskBackendError(t *testing.T) {
	l := NewLog(nil)
	answer := l.Ask(context.Background(), &answerMock{err: fmt.Errorf("backend down")}, "p1", "Q1")

	assert.Equal(t, ErrRequestFail, answer)
	assert.Equal(t, ErrRequestFail, l.Messages()[2].Content)
}

func TestAskEmptyAnswer(t *testing.T) {
	l := NewLog(nil)
	answer := l.Ask(context.Background(), &answerMock{answer: ""}, "p1", "Q1")

	assert.Equal(t, ErrNoResponse, answer)
	assert.Equal(t, ErrNoResponse, l.Messages()[2].Content)
}

func TestSequenceTagsSurviveReload(t *testing.T) {
	l := NewLog(nil)
	l.Append("Q1")

	// Persist and reload mid-flight: the new log must not reuse the
	// outstanding tag.
	reloaded := NewLog(l.Messages())
	second := reloaded.Append("Q2")
	assert.Greater(t, second, 1)
}
