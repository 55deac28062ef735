package models

import "time"

// ChatMessage is one message in a trip's group chat.
type ChatMessage struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"groupId"`
	SenderID        string    `json:"senderId"`
	SenderName      string    `json:"senderName"`
	SenderAvatarURL string    `json:"senderAvatarUrl,omitempty"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
}
