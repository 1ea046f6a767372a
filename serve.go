package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/adoptoposs/adoptoposs/api"
	"github.com/adoptoposs/adoptoposs/internal/group"
	"github.com/adoptoposs/adoptoposs/provider"
	"github.com/adoptoposs/adoptoposs/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type ServeCmd struct {
	Addr           string        `help:"address to listen" default:":9999"`
	GitHubURL      string        `name:"github-url" help:"GitHub API endpoint" default:"https://api.github.com/" env:"ADOPTOPOSS_GITHUB_URL"`
	GitHubRate     float64       `help:"maximum GitHub API requests per second" default:"1"`
	DigestInterval time.Duration `help:"interval between digest collection passes" default:"15m"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}

	providers := provider.Registry{
		"github": &provider.GitHub{
			BaseURL: s.GitHubURL,
			Limiter: rate.NewLimiter(rate.Limit(s.GitHubRate), 5),
		},
	}
	envFn := func(r *http.Request) *api.Env {
		return &api.Env{
			DB:        db.WithContext(r.Context()),
			Logger:    ctx.Logger,
			Providers: providers,
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.Instrument)

	api.Routes(r, envFn)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "User-agent: *\nDisallow: /api/")
	})

	if ctx.Debug {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			ctx.Logger.Debug("route", "method", method, "path", strings.Replace(route, "/*/", "/", -1))
			return nil
		}
		if err := chi.Walk(r, walkFunc); err != nil {
			ctx.Logger.Warn("walk routes", "error", err)
		}
	}

	svr := &http.Server{
		Addr:         s.Addr,
		Handler:      r,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := group.New(sigCtx)
	g.AddContext(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			svr.Shutdown(shutdownCtx)
		}()
		err := svr.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.AddContext(workers.NewDigestProcessor(db, ctx.Logger, s.DigestInterval))
	ctx.Logger.Info("listening", "addr", s.Addr)
	return g.Wait()
}
