package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

// handleLeaderboardLive upgrades to a websocket and pushes a standings
// snapshot on connect and after every rebuild until the client goes away.
func (s *Server) handleLeaderboardLive(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	feed, cancel := s.deps.SubscribeLeaderboard(roomID)
	defer cancel()

	// Initial state so the client renders before the first change.
	snapshot, err := s.deps.Leaderboard(ctx, roomID)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "leaderboard unavailable")
		return
	}
	if err := wsjson.Write(ctx, conn, snapshot); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot, ok := <-feed:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, snapshot); err != nil {
				if !errors.Is(err, context.Canceled) {
					conn.Close(websocket.StatusNormalClosure, "")
				}
				return
			}
		}
	}
}
