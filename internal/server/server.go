// Package server serves live renderings of a directory tree over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/fstree/internal/classify"
	"github.com/temirov/fstree/internal/htmlview"
	"github.com/temirov/fstree/internal/render"
	"github.com/temirov/fstree/internal/services/stream"
	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/walker"
)

const (
	// DefaultListenAddress is used when no address is configured.
	DefaultListenAddress = "127.0.0.1:8080"

	routeRoot    = "/"
	routeJSON    = "/tree.json"
	routeYAML    = "/tree.yaml"
	routeText    = "/tree.txt"
	routeHealth  = "/healthz"
	routeMetrics = "/metrics"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeYAML = "application/yaml"
	contentTypeText = "text/plain; charset=utf-8"
	headerType      = "Content-Type"
	healthyBody     = "ok\n"

	metricsLabel      = "http"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second

	logServerUp      = "serving tree"
	logServerDown    = "server stopped"
	logRequest       = "request"
	logRenderFailed  = "render failed"
	logWalkWarning   = "walk warning"
	errorServeFormat = "serving on %s: %w"
	errorStopFormat  = "shutting down server: %w"
)

// Options configures the preview server.
type Options struct {
	Root     types.ValidatedRoot
	RootName string
	Walk     walker.Options
	Roles    classify.Table
	Listen   string
	Logger   *zap.Logger
}

// Server renders a fresh walk of the root for every request.
type Server struct {
	options  Options
	registry *prometheus.Registry
	router   chi.Router
}

// New builds the router and its metrics registry.
func New(options Options) *Server {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Listen == "" {
		options.Listen = DefaultListenAddress
	}
	options.Walk.Root = options.Root.AbsolutePath
	logger := options.Logger
	options.Walk.Warn = func(message string) {
		logger.Warn(logWalkWarning, zap.String("detail", message))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &Server{options: options, registry: registry}
	router := chi.NewRouter()
	router.Use(middleware.RealIP, middleware.RequestID, middleware.Recoverer, server.logRequests)
	router.Group(func(instrumented chi.Router) {
		instrumented.Use(instrument(registry, metricsLabel))
		instrumented.Get(routeRoot, server.handlePage)
		instrumented.Get(routeJSON, server.handleRecord(types.FormatJSON, contentTypeJSON))
		instrumented.Get(routeYAML, server.handleRecord(types.FormatYAML, contentTypeYAML))
		instrumented.Get(routeText, server.handleText)
	})
	router.Get(routeHealth, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set(headerType, contentTypeText)
		_, _ = writer.Write([]byte(healthyBody))
	})
	router.Handle(routeMetrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server.router = router
	return server
}

// Handler exposes the router.
func (server *Server) Handler() http.Handler {
	return server.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (server *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              server.options.Listen,
		Handler:           server.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.options.Logger.Info(logServerUp,
			zap.String("address", "http://"+server.options.Listen+routeRoot),
			zap.String("root", server.options.Root.AbsolutePath))
		if serveError := httpServer.ListenAndServe(); serveError != nil && !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(errorServeFormat, server.options.Listen, serveError)
		}
		return nil
	})
	group.Go(func() error {
		<-groupContext.Done()
		shutdownContext, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil {
			return fmt.Errorf(errorStopFormat, shutdownError)
		}
		server.options.Logger.Info(logServerDown)
		return nil
	})
	return group.Wait()
}

func (server *Server) buildRecord(ctx context.Context) (*render.Record, error) {
	builder := render.NewRecordBuilder(server.options.Root.AbsolutePath, server.options.RootName)
	dispatchError := stream.Dispatch(ctx, stream.WalkProducer(server.options.Walk), builder.Add)
	if dispatchError != nil {
		return nil, dispatchError
	}
	return builder.Root(), nil
}

func (server *Server) handlePage(writer http.ResponseWriter, request *http.Request) {
	record, buildError := server.buildRecord(request.Context())
	if buildError != nil {
		server.fail(writer, buildError)
		return
	}
	var buffer bytes.Buffer
	if renderError := htmlview.Render(&buffer, htmlview.NewPage(record, server.options.Roles)); renderError != nil {
		server.fail(writer, renderError)
		return
	}
	server.respond(writer, contentTypeHTML, buffer.Bytes())
}

func (server *Server) handleRecord(format string, contentType string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var buffer bytes.Buffer
		renderer, rendererError := render.NewRecordRenderer(&buffer, format, server.options.Root.AbsolutePath, server.options.RootName)
		if rendererError != nil {
			server.fail(writer, rendererError)
			return
		}
		if runError := stream.Run(request.Context(), server.options.Walk, renderer); runError != nil {
			server.fail(writer, runError)
			return
		}
		server.respond(writer, contentType, buffer.Bytes())
	}
}

func (server *Server) handleText(writer http.ResponseWriter, request *http.Request) {
	var buffer bytes.Buffer
	renderer := render.NewTextRenderer(&buffer, render.Palette{})
	if beginError := renderer.Begin(server.options.RootName); beginError != nil {
		server.fail(writer, beginError)
		return
	}
	if runError := stream.Run(request.Context(), server.options.Walk, renderer); runError != nil {
		server.fail(writer, runError)
		return
	}
	server.respond(writer, contentTypeText, buffer.Bytes())
}

func (server *Server) respond(writer http.ResponseWriter, contentType string, body []byte) {
	writer.Header().Set(headerType, contentType)
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(body)
}

func (server *Server) fail(writer http.ResponseWriter, failure error) {
	server.options.Logger.Error(logRenderFailed, zap.Error(failure))
	http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (server *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := time.Now()
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)
		server.options.Logger.Debug(logRequest,
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Int("bytes", wrapped.BytesWritten()),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(request.Context())))
	})
}
