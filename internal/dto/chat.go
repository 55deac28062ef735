package dto

// PostMessageRequest is the body of POST /api/chat/{groupId}/messages
type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ChatMessageResponse is one chat message
type ChatMessageResponse struct {
	ID              string `json:"id"`
	GroupID         string `json:"groupId"`
	SenderID        string `json:"senderId"`
	SenderName      string `json:"senderName"`
	SenderAvatarURL string `json:"senderAvatarUrl,omitempty"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
}

// ChatHistoryResponse lists the most recent messages of a group, oldest first
type ChatHistoryResponse struct {
	GroupID  string                `json:"groupId"`
	Messages []ChatMessageResponse `json:"messages"`
}
