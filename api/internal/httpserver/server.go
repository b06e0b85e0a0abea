// Package httpserver — HTTP-интерфейс ассистента: POST /assistant/chat
// и /healthz. Тонкий адаптер над движком, без собственной логики.
package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"til-bot/api/internal/assistant"
)

type Server struct {
	engine   *assistant.Engine
	mentions assistant.MentionFinder
	db       *sql.DB
	log      *zap.Logger
	router   chi.Router
}

// New собирает сервер. db нужен только для /healthz и может быть nil.
func New(engine *assistant.Engine, mentions assistant.MentionFinder, db *sql.DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: engine, mentions: mentions, db: db, log: log}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Router() chi.Router { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Post("/assistant/chat", s.handleChat)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "db: not ok"})
			return
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type chatContext struct {
	LessonID      int64  `json:"lesson_id"`
	Mode          string `json:"mode"`
	UserLevel     string `json:"user_level"`
	LastErrorType string `json:"last_error_type"`
	RefineMode    string `json:"refine_mode"`
	LastTopic     string `json:"last_topic"`
	LastRule      string `json:"last_rule"`
}

type chatRequest struct {
	UserID  int64        `json:"user_id"`
	Message string       `json:"message"`
	Context *chatContext `json:"context"`
}

type chatResponse struct {
	Response       string              `json:"response"`
	Suggestions    []string            `json:"suggestions"`
	NavButtons     []string            `json:"nav_buttons"`
	QuickReplies   []string            `json:"quick_replies"`
	Source         string              `json:"source"`
	MentionedWords []assistant.Mention `json:"mentioned_words"`
	LastTopic      string              `json:"last_topic,omitempty"`
	LastRule       string              `json:"last_rule,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	turnID := uuid.NewString()
	w.Header().Set("X-Turn-ID", turnID)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rc := assistant.Context{Mode: assistant.ModeFree, UserLevel: "A1"}
	if req.Context != nil {
		rc = assistant.Context{
			Mode:          req.Context.Mode,
			LessonID:      req.Context.LessonID,
			UserLevel:     req.Context.UserLevel,
			LastErrorType: req.Context.LastErrorType,
			RefineMode:    req.Context.RefineMode,
			LastTopic:     req.Context.LastTopic,
			LastRule:      req.Context.LastRule,
		}
	}

	out, err := s.engine.ProcessMessage(r.Context(), req.UserID, req.Message, rc)
	if err != nil {
		s.log.Error("chat failed", zap.String("turn_id", turnID), zap.Error(err))
		httpError(w, http.StatusBadGateway, "knowledge store unavailable")
		return
	}

	mentioned := []assistant.Mention{}
	if s.mentions != nil {
		mentioned, err = s.mentions.MentionedWords(r.Context(), out.Text, 10)
		if err != nil {
			s.log.Error("mentioned words failed", zap.String("turn_id", turnID), zap.Error(err))
			httpError(w, http.StatusBadGateway, "knowledge store unavailable")
			return
		}
		if mentioned == nil {
			mentioned = []assistant.Mention{}
		}
	}

	nav, quick := assistant.SplitSuggestions(out.Suggestions)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(chatResponse{
		Response:       out.Text,
		Suggestions:    out.Suggestions,
		NavButtons:     nav,
		QuickReplies:   quick,
		Source:         string(out.Source),
		MentionedWords: mentioned,
		LastTopic:      out.LastTopic,
		LastRule:       out.LastRule,
	})
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start блокирует до остановки сервера.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("http server listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
