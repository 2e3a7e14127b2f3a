// Package api serves the operations panel: enqueue tasks by chat-style
// message, inspect tasks by status, and review the invocation journal.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"agentq/internal/chat"
	"agentq/internal/dispatch"
	"agentq/internal/domain"
	"agentq/internal/infra/runlog"
	"agentq/internal/ports"
)

type Server struct {
	store  ports.Store
	runs   *runlog.Log
	router *chi.Mux
}

// NewServer wires the panel routes. runs may be nil when no journal is
// configured; /runs then answers 404.
func NewServer(store ports.Store, runs *runlog.Log) *Server {
	s := &Server{store: store, runs: runs}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/tasks", s.listTasks)
	r.Post("/tasks", s.createTask)
	if runs != nil {
		r.Get("/runs", s.listRuns)
	}

	s.router = r
	return s
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tasks, err := s.store.List(r.Context(), domain.Filter{Status: status, Limit: limit})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskReq struct {
	// either a chat-style message...
	Message string `json:"message,omitempty"`
	// ...or explicit fields
	Type    string `json:"type,omitempty"`
	Project string `json:"project,omitempty"`
	Payload string `json:"payload,omitempty"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var nt domain.NewTask
	if req.Message != "" {
		parsed, err := chat.Parse(req.Message, domain.RequestedByManual)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		nt = parsed
	} else {
		if req.Type == "" || req.Project == "" {
			http.Error(w, "type and project are required", http.StatusBadRequest)
			return
		}
		nt = domain.NewTask{
			Name:        req.Type + " " + req.Project,
			Type:        req.Type,
			Project:     req.Project,
			Payload:     req.Payload,
			RequestedBy: domain.RequestedByManual,
		}
	}
	nt.Icon = dispatch.Icon(nt.Type)

	created, err := s.store.Create(r.Context(), nt)
	if err != nil {
		var storeErr *domain.StoreError
		if errors.As(err, &storeErr) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.runs.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
