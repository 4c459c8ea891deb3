// internal/server/server.go
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"toolshed/internal/assignments"
	"toolshed/internal/audit"
	"toolshed/internal/config"
	"toolshed/internal/inventory"
	"toolshed/internal/members"
	"toolshed/internal/reports"
	"toolshed/internal/storage"
)

// Server wires the record store, the three registries, and the reporting
// façade behind one HTTP router.
type Server struct {
	Ledger    inventory.Service
	Directory members.Service
	Engine    assignments.Service
	Reports   reports.Service

	db *sql.DB
}

// New builds the full service graph. When cfg.DatabaseURL is set the record
// store is Postgres-backed; otherwise collections live in flat files under
// cfg.DataDir.
func New(ctx context.Context, cfg config.Config, log audit.Logger) (*Server, error) {
	var (
		store storage.Store
		db    *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		store, err = storage.NewPostgresStore(db)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		store, err = storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
	}

	ledger, err := inventory.NewService(ctx, store, log)
	if err != nil {
		return nil, err
	}
	directory, err := members.NewService(ctx, store, log)
	if err != nil {
		return nil, err
	}
	engine, err := assignments.NewService(ctx, store, ledger, directory, log)
	if err != nil {
		return nil, err
	}

	return &Server{
		Ledger:    ledger,
		Directory: directory,
		Engine:    engine,
		Reports:   reports.NewService(engine, ledger, directory),
		db:        db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Router mounts every handler under /api/v1.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/implements", inventory.NewHandler(s.Ledger).Routes())
		r.Mount("/members", members.NewHandler(s.Directory).Routes())
		r.Mount("/assignments", assignments.NewHandler(s.Engine).Routes())
		r.Mount("/reports", reports.NewHandler(s.Reports).Routes())
		r.Post("/admin/persist", s.handlePersist)
	})
	return r
}

// handlePersist saves every collection and reports success per collection per
// format. Partial failure is reported, never fatal.
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := map[string]map[string]bool{
		"implements":  s.Ledger.Persist(ctx),
		"members":     s.Directory.Persist(ctx),
		"assignments": s.Engine.Persist(ctx),
	}
	json.NewEncoder(w).Encode(result)
}
