package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/sigstore/pkg/demo"
	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/reactive"
	"github.com/vango-dev/sigstore/pkg/sigstore"
	"github.com/vango-dev/sigstore/pkg/telemetry"
)

// incoming is a decoded client frame, or the reason it could not be decoded.
type incoming struct {
	msg ClientMessage
	err error
}

// Session is one connected browser. Everything touching its runtime or
// tree runs on the goroutine executing Run.
type Session struct {
	ID string

	conn    *websocket.Conn
	cfg     Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	now     func() time.Time

	defs    *demo.Definitions
	tree    *host.Tree
	store   *demo.Store
	patches []host.Patch

	incoming chan incoming
	readErr  chan error
	done     chan struct{}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, s *Server) *Session {
	id := generateSessionID()
	sess := &Session{
		ID:       id,
		conn:     conn,
		cfg:      s.cfg,
		logger:   s.logger.With("session_id", id),
		metrics:  s.metrics,
		tracer:   s.tracer,
		now:      s.now,
		incoming: make(chan incoming),
		readErr:  make(chan error, 1),
		done:     make(chan struct{}),
	}

	storeOpts := []sigstore.Option{sigstore.WithLogger(sess.logger)}
	treeOpts := []host.Option{
		host.WithLogger(sess.logger),
		host.WithPatchSink(func(p host.Patch) { sess.patches = append(sess.patches, p) }),
	}
	if s.metrics != nil {
		storeOpts = append(storeOpts, sigstore.WithObserver(s.metrics))
		treeOpts = append(treeOpts, host.WithObserver(s.metrics))
	}

	sess.defs = demo.NewDefinitions(storeOpts...)
	sess.tree = host.NewTree(sess.defs.App(demo.Args{
		Runtime:     reactive.NewRuntime(),
		InitialName: s.cfg.InitialName,
		Now:         s.now(),
		LogLimit:    s.cfg.LogLimit,
		Rand:        s.rand,
	}), treeOpts...)
	return sess
}

// Run mounts the demo, sends it to the client, and processes actions and
// clock ticks until the connection closes or ctx is done. The tree is
// unmounted before Run returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()

	html := s.tree.Mount()
	s.store = s.defs.Demo.Use(s.tree.Root())
	if err := s.send(ServerMessage{Type: MessageInit, HTML: html}); err != nil {
		return err
	}
	s.logger.Info("session started")

	go s.readLoop()

	var tick <-chan time.Time
	if s.cfg.TickInterval > 0 {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return nil

		case err := <-s.readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err

		case in := <-s.incoming:
			if err := s.handle(ctx, in); err != nil {
				return err
			}

		case <-tick:
			s.store.Tick(s.now())
			if err := s.flush(ctx); err != nil {
				return err
			}
		}
	}
}

// handle dispatches one client action and sends the resulting patches.
// Bad actions are reported to the client and do not end the session.
func (s *Session) handle(ctx context.Context, in incoming) error {
	if in.err != nil {
		s.logger.Warn("malformed message", "error", in.err)
		return s.send(errorMessage(in.err))
	}

	ctx, span := s.tracer.StartAction(ctx, s.ID, in.msg.Action)
	err := s.store.Dispatch(in.msg.Action, in.msg.Value)
	if s.metrics != nil {
		s.metrics.RecordAction(in.msg.Action, err)
	}
	telemetry.End(span, 0, err)
	if err != nil {
		s.logger.Warn("action failed", "action", in.msg.Action, "error", err)
		return s.send(errorMessage(err))
	}

	s.logger.Debug("action", "action", in.msg.Action)
	return s.flush(ctx)
}

// flush re-renders invalidated nodes and sends one patch per node.
func (s *Session) flush(ctx context.Context) error {
	_, span := s.tracer.StartFlush(ctx, s.ID)
	start := time.Now()
	n, err := s.tree.Flush()
	if s.metrics != nil {
		s.metrics.ObserveFlush(time.Since(start))
	}
	telemetry.End(span, n, err)
	if err != nil {
		s.logger.Error("flush failed", "error", err)
	}

	patches := s.patches
	s.patches = nil
	for _, p := range patches {
		if s.cfg.Dev {
			s.logger.Debug("patch", "node", p.NodeID, "component", p.Component)
		}
		if err := s.send(patchMessage(p)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readErr <- err
			return
		}
		msg, err := DecodeClientMessage(data)
		select {
		case s.incoming <- incoming{msg: msg, err: err}:
		case <-s.done:
			return
		}
	}
}

func (s *Session) send(msg ServerMessage) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteJSON(msg)
}

func (s *Session) close() {
	close(s.done)
	s.tree.Unmount()
	_ = s.conn.Close()
	s.logger.Info("session closed", "builds", s.defs.Builds())
}
