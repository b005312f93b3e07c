package models

import "time"

// Party is the other participant of a conversation.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// Conversation is one entry of the chat conversation list.
type Conversation struct {
	ID            string    `json:"id"`
	OtherParty    Party     `json:"other_party"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at,omitzero"`
}

// Valid reports whether the conversation carries the minimum data required
// to be shown. Malformed entries from the remote are dropped, never stored.
func (c Conversation) Valid() bool {
	return c.ID != "" && c.OtherParty.ID != "" && c.OtherParty.Name != ""
}
