// Package server exposes the public HTTP surface: code generation, chat,
// status, and the WebSocket activity feed.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/artifact"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/config"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/orchestrator"
)

const version = "1.0.0"

type Server struct {
	cfg  config.Config
	orch *orchestrator.Orchestrator
	hub  *Hub
}

func New(cfg config.Config, orch *orchestrator.Orchestrator, hub *Hub) *Server {
	return &Server{cfg: cfg, orch: orch, hub: hub}
}

// Handler builds the full route table. Split out from Run so tests can
// drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /generate-code", s.handleGenerateCode)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.hub.ServeWS)

	return s.cors(mux)
}

// Run serves until ctx is cancelled, then drains connections for up to 5s.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Handler(),
		// Writes stay open long enough to cover a full provider call with
		// retries; reads are just small JSON bodies.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 4 * s.cfg.ProviderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Info().Str("port", s.cfg.Port).Msg("server online")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		jsonErr(w, "Prompt is required", 400)
		return
	}

	res, err := s.orch.GenerateCode(r.Context(), req.Prompt)
	if err != nil {
		var malformed *artifact.MalformedResponseError
		if errors.As(err, &malformed) {
			jsonErr(w, "Invalid JSON response from model", 500)
			return
		}
		jsonErr(w, "Failed to generate code", 500)
		return
	}

	jsonOK(w, map[string]any{
		"message":  res.Raw,
		"htmlCode": res.Artifact.HTML,
		"cssCode":  res.Artifact.CSS,
		"jsCode":   res.Artifact.JS,
	}, 200)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message  string `json:"message"`
		HTMLCode string `json:"htmlCode"`
		CSSCode  string `json:"cssCode"`
		JSCode   string `json:"jsCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}
	if req.Message == "" {
		jsonErr(w, "Message is required", 400)
		return
	}

	prior := artifact.Artifact{HTML: req.HTMLCode, CSS: req.CSSCode, JS: req.JSCode}
	result := s.orch.Chat(r.Context(), req.Message, prior)

	if result.Code != nil {
		reply, err := encodeArtifact(result.Code.Artifact)
		if err != nil {
			jsonOK(w, map[string]any{
				"reply": "Error processing code modification request.", "updateCode": false, "isTextResponse": false,
			}, 200)
			return
		}
		jsonOK(w, map[string]any{
			"reply": reply, "updateCode": true, "isTextResponse": false,
		}, 200)
		return
	}

	jsonOK(w, map[string]any{
		"reply": result.Text.Reply, "updateCode": false, "isTextResponse": result.Text.IsChat,
	}, 200)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":  "online",
		"clients": s.hub.ClientCount(),
		"version": version,
	}, 200)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// encodeArtifact pretty-prints the artifact for the reply field. The editor
// pane re-parses this string, so < and > must survive unescaped.
func encodeArtifact(a artifact.Artifact) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	jsonOK(w, map[string]string{"error": msg}, code)
}

// cors allows the single configured frontend origin, with credentials.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}
