// Package app wires the productdesk store, service and transports together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/productdesk/internal/config"
	"github.com/abgdnv/productdesk/internal/service"
	"github.com/abgdnv/productdesk/internal/store"
	grpcImpl "github.com/abgdnv/productdesk/internal/transport/grpc"
	"github.com/abgdnv/productdesk/internal/transport/rest"
	"github.com/abgdnv/productdesk/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies builds the service over the SQLite file at dbPath.
// Nothing is opened here; call ProductService.EnsureSchema before serving.
func SetupDependencies(dbPath string, busyTimeout int, logger *slog.Logger) *Dependencies {
	var opts []store.Option
	if busyTimeout > 0 {
		opts = append(opts, store.WithBusyTimeout(busyTimeout))
	}
	pService := service.NewService(store.NewSQLiteStore(dbPath, logger, opts...))

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler returns the routed handler with the standard middleware chain.
// Used by E2E tests to serve the API from an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates the HTTP server for the catalog API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Host:           cfg.HTTPServer.Host,
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux, "productdesk.http")
}

// SetupGrpcServer creates the gRPC server with the catalog service registered.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	catalogRegisterFunc := func(s *grpc.Server) {
		grpcImpl.RegisterCatalogServer(s, grpcImpl.NewServer(deps.ProductService, deps.Logger))
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, catalogRegisterFunc)
}
