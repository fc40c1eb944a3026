package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"productbom/src/services/composition"
)

// Server representa o servidor HTTP da API
type Server struct {
	logger             *slog.Logger
	server             *http.Server
	mux                *http.ServeMux
	port               int
	compositionService *composition.CompositionService
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	compositionService *composition.CompositionService,
) *Server {
	server := &Server{
		mux:                http.NewServeMux(),
		port:               port,
		logger:             logger,
		compositionService: compositionService,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Ciclo de vida do produto
	server.mux.HandleFunc("POST /v1/products", server.CreateProduct)
	server.mux.HandleFunc("GET /v1/products", server.ListProducts)
	server.mux.HandleFunc("GET /v1/products/{id}", server.GetProductByID)
	server.mux.HandleFunc("PUT /v1/products/{id}", server.UpdateProduct)
	server.mux.HandleFunc("DELETE /v1/products/{id}", server.DeleteProduct)

	// Composição
	server.mux.HandleFunc("POST /v1/products/{parentId}/children/{childId}", server.AddChild)
	server.mux.HandleFunc("DELETE /v1/products/{parentId}/children/{childId}", server.RemoveChild)
	server.mux.HandleFunc("GET /v1/products/{id}/children", server.GetChildren)
	server.mux.HandleFunc("GET /v1/products/{id}/ancestors", server.GetAncestors)

	return server
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
