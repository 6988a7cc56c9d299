// Package server exposes the store, search engine, and ingestion facade
// over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tdzio/tdz/internal/embedding"
	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/ingest"
	"github.com/tdzio/tdz/internal/planner"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/store"
)

// Config carries the server's own settings; everything else arrives as
// constructed collaborators.
type Config struct {
	Addr          string
	RequireAPIKey bool
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	st       *store.Store
	idx      *index.Index
	engine   *search.Engine
	facade   *ingest.Facade
	plan     *planner.Client
	embedder embedding.Embedder
	logger   *zap.Logger
}

// New wires a server. plan and embedder may be nil; the corresponding
// endpoints report Unavailable.
func New(cfg Config, st *store.Store, idx *index.Index, engine *search.Engine, facade *ingest.Facade, plan *planner.Client, embedder embedding.Embedder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		st:       st,
		idx:      idx,
		engine:   engine,
		facade:   facade,
		plan:     plan,
		embedder: embedder,
		logger:   logger,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.cfg.RequireAPIKey {
		r.Use(s.requireAPIKey)
	}

	r.Get("/health", s.health)
	r.Get("/stats", s.stats)
	r.Get("/search", s.search)

	r.Post("/ingest", s.ingest)
	r.Post("/plan", s.planExtract)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Get("/{id}", s.getTask)
		r.Patch("/{id}", s.updateTask)
		r.Delete("/{id}", s.deleteTask)
		r.Post("/{id}/complete", s.completeTask)
		r.Post("/{id}/assign", s.assignTask)
	})

	r.Route("/memories", func(r chi.Router) {
		r.Get("/", s.listMemories)
		r.Post("/", s.createMemory)
		r.Get("/{id}", s.getMemory)
		r.Delete("/{id}", s.deleteMemory)
	})

	r.Route("/ideas", func(r chi.Router) {
		r.Get("/", s.listIdeas)
		r.Post("/", s.createIdea)
		r.Get("/{id}", s.getIdea)
		r.Delete("/{id}", s.deleteIdea)
	})

	r.Route("/feelings", func(r chi.Router) {
		r.Get("/", s.listFeelings)
		r.Post("/", s.createFeeling)
		r.Delete("/{id}", s.deleteFeeling)
	})

	r.Route("/errors", func(r chi.Router) {
		r.Get("/", s.listErrors)
		r.Post("/", s.createError)
		r.Get("/{id}", s.getError)
		r.Delete("/{id}", s.deleteError)
		r.Post("/{id}/resolve", s.resolveError)
	})

	r.Route("/training", func(r chi.Router) {
		r.Get("/", s.listTraining)
		r.Post("/", s.createTraining)
		r.Get("/{id}", s.getTraining)
		r.Delete("/{id}", s.deleteTraining)
	})

	r.Route("/chunks", func(r chi.Router) {
		r.Get("/", s.listChunks)
		r.Post("/", s.createChunk)
		r.Get("/{id}", s.getChunk)
		r.Delete("/{id}", s.deleteChunk)
		r.Put("/{id}/status", s.setChunkStatus)
	})

	r.Route("/queue", func(r chi.Router) {
		r.Get("/", s.listQueue)
		r.Post("/", s.createQueueItem)
		r.Get("/{id}", s.getQueueItem)
		r.Delete("/{id}", s.deleteQueueItem)
		r.Post("/{id}/start", s.startSession)
	})
	r.Get("/sessions", s.listSessions)
	r.Post("/sessions/{id}/end", s.endSession)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Get("/{name}", s.getProject)
		r.Delete("/{name}", s.deleteProject)
		r.Post("/{name}/archive", s.archiveProject)
		r.Put("/{name}/status", s.setProjectStatus)
	})

	r.Route("/agents", func(r chi.Router) {
		r.Get("/", s.listAgents)
		r.Post("/", s.createAgent)
		r.Get("/{id}", s.getAgent)
		r.Delete("/{id}", s.deleteAgent)
	})

	r.Route("/backups", func(r chi.Router) {
		r.Get("/", s.listBackups)
		r.Post("/", s.createBackup)
	})

	return r
}

// Run serves until ctx is cancelled, watching the store root for changes
// made by other processes.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopWatch, err := s.watchStore(ctx)
	if err != nil {
		s.logger.Warn("store watcher unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
