package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"steiner-planner/internal/config"
	"steiner-planner/internal/steiner"
)

const streamTimeout = 2 * time.Minute

// StreamEvent is one websocket message of GET /stream.
type StreamEvent struct {
	Type   string           `json:"type"` // "progress", "result" or "error"
	Stage  steiner.Stage    `json:"stage,omitempty"`
	Detail string           `json:"detail,omitempty"`
	Result *NetworkResponse `json:"result,omitempty"`
}

// GET /stream - Build a network over a websocket, reporting every stage.
// The client sends one configuration message (an empty object means the
// server's base configuration) and receives progress events followed by a
// result or error event.
func (s *server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Printf("❌ Websocket accept failed: %v\n", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(r.Context(), streamTimeout)
	defer cancel()

	s.logger.Println("📡 Stream client connected")

	var raw json.RawMessage
	if err := wsjson.Read(ctx, conn, &raw); err != nil {
		s.logger.Printf("⚠️  Failed to read stream request: %v\n", err)
		return
	}

	cfg := s.base
	if len(raw) > 0 && string(raw) != "{}" && string(raw) != "null" {
		cfg, err = config.Parse(raw)
		if err != nil {
			s.sendEvent(ctx, conn, StreamEvent{Type: "error", Detail: err.Error()})
			return
		}
	}

	progress := func(stage steiner.Stage, detail string) {
		s.sendEvent(ctx, conn, StreamEvent{Type: "progress", Stage: stage, Detail: detail})
	}

	res, err := s.runConfig(cfg, progress)
	if err != nil {
		s.sendEvent(ctx, conn, StreamEvent{Type: "error", Detail: err.Error()})
		return
	}

	resp := resultResponse(res)
	s.sendEvent(ctx, conn, StreamEvent{Type: "result", Result: &resp})
	s.logger.Println("📡 Stream finished")
}

func (s *server) sendEvent(ctx context.Context, conn *websocket.Conn, ev StreamEvent) {
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		s.logger.Printf("⚠️  Failed to send %s event: %v\n", ev.Type, err)
	}
}
