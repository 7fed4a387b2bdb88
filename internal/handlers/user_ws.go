// internal/handlers/user_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/coder/websocket"

	"github.com/tcg2i/tcg-service/internal/middleware"
	"github.com/tcg2i/tcg-service/internal/models"
)

// userStreamInterval is how often the stream re-reads the collection record.
const userStreamInterval = 3 * time.Second

// UserStreamHandler pushes the caller's collection record over a websocket
// whenever it changes: booster balance, daily counters, and in particular
// the whitelist flag, which the client watches to unlock the app. The
// initial state is sent immediately on connect.
func (s *Server) UserStreamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requireUser(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"user"},
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.Log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")
	middleware.LogStreamConnect(s.Log, r.RemoteAddr, r.URL.Path)

	ctx := r.Context()
	ticker := time.NewTicker(userStreamInterval)
	defer ticker.Stop()

	var last *models.Collection
	for {
		col, err := s.Store.GetCollection(ctx, userID)
		if err != nil {
			s.Log.WithError(err).Warn("user stream read failed")
			c.Close(websocket.StatusInternalError, "store read failed")
			middleware.LogStreamDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
			return
		}

		if last == nil || !reflect.DeepEqual(last, col) {
			if err := writeWS(ctx, c, col); err != nil {
				middleware.LogStreamDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
				return
			}
			last = col
		}

		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "client gone")
			middleware.LogStreamDisconnect(s.Log, r.RemoteAddr, r.URL.Path, nil)
			return
		case <-ticker.C:
		}
	}
}

func writeWS(ctx context.Context, c *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
