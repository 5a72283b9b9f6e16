package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection watching one group's draws.
type Client struct {
	ProfileID uint
	GroupID   uint
	Send      chan []byte
	hub       *DrawHub
	mu        sync.Mutex
	closed    bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// DrawHub fans draw reveal/result events out to the spectators of each group.
type DrawHub struct {
	mu      sync.RWMutex
	byGroup map[uint]map[*Client]struct{}
}

func NewDrawHub() *DrawHub {
	return &DrawHub{byGroup: make(map[uint]map[*Client]struct{})}
}

func (h *DrawHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byGroup[c.GroupID] == nil {
		h.byGroup[c.GroupID] = make(map[*Client]struct{})
	}
	h.byGroup[c.GroupID][c] = struct{}{}
}

func (h *DrawHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byGroup[c.GroupID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byGroup, c.GroupID)
		}
	}
}

// BroadcastToGroup sends payload to every spectator of the group. Slow clients
// are skipped rather than blocking the draw.
func (h *DrawHub) BroadcastToGroup(groupID uint, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.byGroup[groupID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			select {
			case c.Send <- data:
			default:
			}
		}
		c.mu.Unlock()
	}
}

// Reveal and result events pushed to spectators.

type RevealEvent struct {
	Type     string `json:"type"` // "reveal"
	GroupID  uint   `json:"group_id"`
	Number   int    `json:"number"`
	Position int    `json:"position"`
}

type ResultEvent struct {
	Type            string `json:"type"` // "result"
	GroupID         uint   `json:"group_id"`
	WinningNumber   int    `json:"winning_number"`
	WinnerPosition  int    `json:"winner_position"`
	GroupClosed     bool   `json:"group_closed"`
	RemainingQuotas int64  `json:"remaining_quotas"`
}

type ResetEvent struct {
	Type    string `json:"type"` // "reset"
	GroupID uint   `json:"group_id"`
}
