package chat

import (
	"slices"
	"sync"

	"ROAMMATE_BACK-END/internal/models"
)

// DefaultHistoryLimit is the number of messages kept per group when no limit is given.
const DefaultHistoryLimit = 200

// History keeps the most recent messages of every group in memory.
type History struct {
	mu      sync.RWMutex
	limit   int
	byGroup map[string][]models.ChatMessage
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, byGroup: make(map[string][]models.ChatMessage)}
}

// Append adds msg and drops the oldest entries beyond the limit.
func (h *History) Append(msg models.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.byGroup[msg.GroupID], msg)
	if over := len(msgs) - h.limit; over > 0 {
		msgs = slices.Clone(msgs[over:])
	}
	h.byGroup[msg.GroupID] = msgs
}

// List returns the group's messages oldest first.
func (h *History) List(groupID string) []models.ChatMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := slices.Clone(h.byGroup[groupID])
	if out == nil {
		out = []models.ChatMessage{}
	}
	return out
}
