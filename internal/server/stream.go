package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/metrics"
)

// handleSSE pushes one snapshot per interval as Server-Sent Events until the
// client disconnects or the server shuts down.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeEventStream)
	h.Set(config.HeaderCacheControl, config.CacheControlNone)
	h.Set(config.HeaderConnection, config.ConnectionKeepAlive)
	h.Set(config.HeaderAccelBuffering, "no")

	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		writeError(w, err)
		return
	}
	if err := rc.Flush(); err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, config.ErrStreamUnsupport, err))
		return
	}

	ctx, cancel := s.streamContext(r.Context())
	defer cancel()

	log := streamLogger(r, config.TransportSSE)
	metrics.TrackStream(config.TransportSSE, true)
	defer metrics.TrackStream(config.TransportSSE, false)
	log.Debug(config.MsgStreamOpen)

	err := s.opts.Countdown.Stream(ctx, s.opts.StreamInterval, func(snap engine.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, config.FormatSSEData, data); err != nil {
			return fmt.Errorf("%s: %w", config.ErrStreamWrite, err)
		}
		return rc.Flush()
	})
	log.Debug(config.MsgStreamClosed, config.LogKeyError, err)
}

// handleWebSocket sends one snapshot JSON message per interval. Client messages
// are discarded; pings keep idle proxies from dropping the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   config.WSBufferSize,
		WriteBufferSize:  config.WSBufferSize,
		HandshakeTimeout: config.WSHandshakeTimeout,
		CheckOrigin:      s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.Warn(config.ErrWebSocketUpgrade,
			config.LogKeyComponent, config.CompStream,
			config.LogKeyError, err,
		)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := s.streamContext(r.Context())
	defer cancel()

	log := streamLogger(r, config.TransportWebSocket)
	metrics.TrackStream(config.TransportWebSocket, true)
	defer metrics.TrackStream(config.TransportWebSocket, false)
	log.Debug(config.MsgStreamOpen)

	conn.SetReadLimit(config.WSMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	})

	// Read pump: a read error means the peer is gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// WriteControl may run concurrently with the data writer.
	go func() {
		ticker := time.NewTicker(config.WSPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(config.WSWriteWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	err = s.opts.Countdown.Stream(ctx, s.opts.StreamInterval, func(snap engine.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
		return conn.WriteMessage(websocket.TextMessage, data)
	})

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(config.WSWriteWait))
	log.Debug(config.MsgStreamClosed, config.LogKeyError, err)
}

// checkOrigin accepts requests without Origin (non-browser clients) and browser
// origins allowed by the CORS configuration.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.Settings.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func streamLogger(r *http.Request, transport string) *slog.Logger {
	return slog.With(
		slog.String(config.LogKeyComponent, config.CompStream),
		slog.String(config.LogKeyTransport, transport),
		slog.String(config.LogKeyRemote, r.RemoteAddr),
		slog.String(config.LogKeyRequestID, RequestIDFrom(r.Context())),
	)
}
