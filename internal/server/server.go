// Package server hosts the Twilio channel drivers behind an HTTP webhook
// endpoint. Conversation logic stays outside: the server hands every matched
// message to a caller-supplied handler and renders whatever it returns.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gobotkit/twilio"
	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/twiml"
)

// Handler produces the outgoing reply for one incoming message. It may
// return a string, *message.Outgoing, *message.Question or *twiml.Response;
// nil renders an empty TwiML response.
type Handler func(ctx context.Context, drv twilio.Driver, msg *message.Incoming) (any, *twilio.SendOptions)

// EventHandler observes driver events such as incoming calls.
type EventHandler func(ctx context.Context, drv twilio.Driver, ev *message.Event)

// Config configures the webhook server.
type Config struct {
	Addr    string // listen address, e.g. ":8080"
	Path    string // webhook URL path (default: /twilio)
	Twilio  twilio.Config
	Logger  *slog.Logger
	OnEvent EventHandler // optional
}

// Server is the webhook HTTP server.
type Server struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
	server  *http.Server
}

// New creates a webhook server. The Twilio config must carry an auth token;
// this is checked here so a misconfigured server fails at startup instead of
// on the first webhook.
func New(cfg Config, handler Handler) (*Server, error) {
	if err := cfg.Twilio.Validate(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		cfg.Path = "/twilio"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{cfg: cfg, handler: handler, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, s.handleWebhook)
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("twilio webhook server starting", "addr", s.cfg.Addr, "path", s.cfg.Path)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("twilio webhook server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	drv, err := twilio.Match(r, s.cfg.Twilio)
	if err != nil {
		// An unsigned, tampered or foreign request is indistinguishable from
		// a request for another handler; answer 404 either way.
		s.logger.Warn("no driver matched webhook", "err", err)
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	if ev := drv.Event(); ev != nil {
		s.logger.Info("driver event", "driver", drv.Name(), "event", ev.Name)
		if s.cfg.OnEvent != nil {
			s.cfg.OnEvent(ctx, drv, ev)
		}
	}

	msg := drv.Messages()[0]
	s.logger.Info("webhook received",
		"driver", drv.Name(),
		"sender", msg.Sender,
		"content_len", len(msg.Text),
	)

	out, opts := s.handler(ctx, drv, msg)
	reply, err := s.render(ctx, drv, out, msg, opts)
	if err != nil {
		s.logger.Error("failed to render reply", "driver", drv.Name(), "err", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", reply.ContentType)
	if _, err := w.Write(reply.Body); err != nil {
		s.logger.Error("failed to write reply", "err", err)
	}
}

func (s *Server) render(ctx context.Context, drv twilio.Driver, out any, msg *message.Incoming, opts *twilio.SendOptions) (*twilio.Reply, error) {
	if out == nil {
		// Twilio expects well-formed TwiML even when there is nothing to say.
		out = twiml.New()
	}
	payload := drv.BuildPayload(out, msg, opts)
	return drv.Render(ctx, payload)
}
