package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/houseoftea/inventory-console/httpclient"
	"github.com/houseoftea/inventory-console/notifier"
	"github.com/houseoftea/inventory-console/routeguard"
	"github.com/houseoftea/inventory-console/routes"
	"github.com/houseoftea/inventory-console/token"
	"github.com/houseoftea/inventory-console/users"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard shell with the guarded route surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	displayAppname(rt.config.GetAppName())

	expiry, err := notifier.NewNotifier(rt.store, rt.controller,
		notifier.WithLogger(log.With().Str("component", "notifier").Logger()))
	if err != nil {
		return err
	}

	watchdog, err := notifier.NewWatchdog(rt.store, token.NewCodec(),
		notifier.WithWatchdogLogger(log.With().Str("component", "watchdog").Logger()))
	if err != nil {
		return err
	}

	notifyCtx, stopNotifier := context.WithCancel(ctx)
	defer stopNotifier()
	gate := newExpiryGate(expiry)
	go gate.run(notifyCtx)
	go func() { _ = watchdog.Run(notifyCtx) }()

	server := &http.Server{Addr: rt.config.GetPort(), Handler: newRouter(rt, gate)}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("console listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server.ListenAndServe")
		}
	}()

	waitForStopSignal(ctx)
	return shutdown(server)
}

func newRouter(rt *runtime, gate *expiryGate) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(routeguard.RedirectAuthenticated(rt.store))
		r.Get(routes.RouteLanding, func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"view": "login"})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(routeguard.RequireRole(rt.store, users.RoleAdmin))
		r.Get(routes.RouteStore, areaHandler("store"))
	})

	r.Group(func(r chi.Router) {
		r.Use(routeguard.RequireRole(rt.store, users.RoleBranchManager))
		r.Get(routes.RouteBranch, areaHandler("branch"))
	})

	r.Get(routes.RouteUnauthorized, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"view": "unauthorized"})
	})

	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		var credentials httpclient.Credentials
		if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
			return
		}
		result, err := rt.controller.Login(req.Context(), credentials)
		if err != nil {
			detail := rt.store.Snapshot().Err
			if detail == "" {
				detail = err.Error()
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detail})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"redirect": result.Redirect})
	})

	r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
		landing := rt.controller.Logout(req.Context())
		writeJSON(w, http.StatusOK, map[string]string{"redirect": landing})
	})

	r.Get("/session", func(w http.ResponseWriter, req *http.Request) {
		snapshot := rt.store.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"user":    snapshot.User,
			"expired": snapshot.IsExpired,
		})
	})

	// The blocking expiry gate: the only way past it is confirming logout.
	r.Get("/session/expired", func(w http.ResponseWriter, req *http.Request) {
		prompt, pending := gate.pending()
		if !pending {
			writeJSON(w, http.StatusOK, map[string]any{"expired": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expired": true, "message": prompt.Message()})
	})
	r.Post("/session/expired/confirm", func(w http.ResponseWriter, req *http.Request) {
		landing, confirmed := gate.confirm(req.Context())
		if !confirmed {
			writeJSON(w, http.StatusConflict, map[string]string{"detail": "session is not expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"redirect": landing})
	})

	r.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"view": "not-found"})
	})

	return r
}

func areaHandler(area string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"view": area})
	}
}

// expiryGate holds the latest undismissed expiry prompt for the HTTP shell.
type expiryGate struct {
	notifier *notifier.Notifier

	lock   sync.Mutex
	prompt *notifier.Prompt
}

func newExpiryGate(n *notifier.Notifier) *expiryGate {
	return &expiryGate{notifier: n}
}

func (g *expiryGate) run(ctx context.Context) {
	go func() {
		if err := g.notifier.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("expiry notifier stopped")
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case prompt := <-g.notifier.Prompts():
			g.lock.Lock()
			g.prompt = &prompt
			g.lock.Unlock()
		}
	}
}

func (g *expiryGate) pending() (*notifier.Prompt, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.prompt, g.prompt != nil
}

func (g *expiryGate) confirm(ctx context.Context) (string, bool) {
	g.lock.Lock()
	prompt := g.prompt
	g.prompt = nil
	g.lock.Unlock()

	if prompt == nil {
		return "", false
	}
	return prompt.Confirm(ctx), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func waitForStopSignal(ctx context.Context) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
