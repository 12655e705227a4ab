// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat maintains the interactive query transcript. Each outgoing
// question immediately appends the user message and a tagged placeholder;
// the answer later replaces the placeholder with the matching tag, so
// concurrent questions resolve correctly even out of order.
package chat

import (
	"context"
	"sync"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// Placeholder and error texts shown in the transcript. Failures replace the
// placeholder in place; entries are never removed.
const (
	Thinking       = "Thinking..."
	ErrNoResponse  = "Error: Could not get a response."
	ErrRequestFail = "Something went wrong. Please try again."
)

// WelcomeMessage seeds an empty transcript.
const WelcomeMessage = "Hi! Ask me anything about your uploaded papers and I will answer from their content."

// Answerer answers a free-text question about a project's papers.
type Answerer interface {
	RAGChat(ctx context.Context, projectID, query string) (string, error)
}

// Log is a mutable transcript over persisted chat messages. Safe for
// concurrent use.
type Log struct {
	mu       sync.Mutex
	messages []types.ChatMessage
	nextSeq  int
}

// NewLog wraps existing messages in a Log. An empty transcript gains the
// welcome message. The next sequence tag starts above any tag already
// present so resumed sessions cannot collide with old placeholders.
func NewLog(messages []types.ChatMessage) *Log {
	l := &Log{messages: messages, nextSeq: 1}
	for _, m := range messages {
		if m.Seq >= l.nextSeq {
			l.nextSeq = m.Seq + 1
		}
	}
	if len(l.messages) == 0 {
		l.messages = []types.ChatMessage{{Role: types.RoleSystem, Content: WelcomeMessage}}
	}
	return l
}

// Messages returns a copy of the transcript.
func (l *Log) Messages() []types.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Append records the user's question and a tagged placeholder, returning
// the tag to resolve or fail later.
func (l *Log) Append(query string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.nextSeq
	l.nextSeq++
	l.messages = append(l.messages,
		types.ChatMessage{Role: types.RoleUser, Content: query},
		types.ChatMessage{Role: types.RoleSystem, Content: Thinking, Seq: seq},
	)
	return seq
}

// Resolve replaces the placeholder tagged seq with the answer. Unknown tags
// are ignored; a placeholder resolves at most once.
func (l *Log) Resolve(seq int, answer string) {
	l.settle(seq, answer)
}

// Fail replaces the placeholder tagged seq with the request failure text.
func (l *Log) Fail(seq int) {
	l.settle(seq, ErrRequestFail)
}

func (l *Log) settle(seq int, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.messages {
		if l.messages[i].Seq == seq {
			l.messages[i].Content = content
			l.messages[i].Seq = 0
			return
		}
	}
}

// Ask sends one question through the backend and settles its placeholder.
// The returned answer is what now stands in the transcript.
func (l *Log) Ask(ctx context.Context, backend Answerer, projectID, query string) string {
	seq := l.Append(query)
	answer, err := backend.RAGChat(ctx, projectID, query)
	if err != nil {
		l.Fail(seq)
		return ErrRequestFail
	}
	if answer == "" {
		l.settle(seq, ErrNoResponse)
		return ErrNoResponse
	}
	l.Resolve(seq, answer)
	return answer
}
