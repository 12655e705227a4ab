// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser   ChatRole = "user"
	RoleSystem ChatRole = "system"
)

// ChatMessage is one entry in the interactive query transcript.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`

	// Seq tags a pending placeholder so the matching response replaces it
	// even when requests complete out of order. Zero for settled messages.
	Seq int `json:"seq,omitempty"`
}
