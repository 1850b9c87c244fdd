package app

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LeonardoBeccarini/greenpower/internal/services/dashboard"
)

const writeWait = 10 * time.Second

// HandleLive streams a Snapshot on connect and after every change of the
// browser's dashboard. The feed closes when the dashboard is unmounted.
func (g *Gateway) HandleLive(w http.ResponseWriter, r *http.Request) {
	dash, err := g.controller(w, r).Dashboard()
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		g.log.Debugw("gateway: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if m := g.cfg.Metrics; m != nil {
		m.WebsocketOpened()
		defer m.WebsocketClosed()
	}

	updates := make(chan dashboard.Snapshot, 8)
	unsubscribe := dash.Subscribe(func(s dashboard.Snapshot) {
		// keep the newest snapshots when the client is slow
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	pongWait := g.cfg.PingPeriod * 2
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(s dashboard.Snapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(s)
	}
	if err := send(dash.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(g.cfg.PingPeriod)
	defer ping.Stop()

	for {
		select {
		case s := <-updates:
			if err := send(s); err != nil {
				g.log.Debugw("gateway: websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-dash.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logged out")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case <-closed:
			return
		}
	}
}
