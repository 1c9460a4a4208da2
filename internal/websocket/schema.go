package websocket

import "github.com/codequesthq/codequest-backend/internal/model"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStatus      Event = "status"
	EventLeaderboard Event = "leaderboard"
	EventError       Event = "error"
	EventPong        Event = "pong"
)

// StatusEvent announces a competition status transition. Published by the
// status sweep worker on every flip and relayed to stream subscribers.
type StatusEvent struct {
	Event         Event                   `json:"event"`
	CompetitionID string                  `json:"competition_id"`
	Status        model.CompetitionStatus `json:"status"`
	IsLive        bool                    `json:"is_live"`
	Archived      bool                    `json:"archived"`
}

// LeaderboardEvent carries the current graded standings of a competition.
type LeaderboardEvent struct {
	Event   Event                    `json:"event"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

// ErrorResponse reports a stream-level failure to the client.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a client ping.
type PongResponse struct {
	Event Event `json:"event"`
}

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}
