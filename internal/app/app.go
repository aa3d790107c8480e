// Package app provides the application lifecycle for the minirel server:
// configuration, database, and HTTP façade wiring with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	httpapi "github.com/minirel/minirel/internal/api/http"
	"github.com/minirel/minirel/internal/config"
	"github.com/minirel/minirel/internal/engine"
)

// App manages the minirel server lifecycle.
type App struct {
	cfg *config.Config

	db     *engine.Database
	server *http.Server

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &App{cfg: cfg}, nil
}

// Database returns the app's database once started.
func (a *App) Database() *engine.Database {
	return a.db
}

// Start opens the database and starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	db, err := engine.Open(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db
	log.Printf("Database opened: %s", a.cfg.DataDir)

	a.server = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      httpapi.NewRouter(db),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		log.Printf("API server listening on %s", a.cfg.HTTP.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server and closes the database.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	var firstErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	a.wg.Wait()

	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	log.Printf("minirel stopped")
	return firstErr
}
