package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ktabnet/ktabnet-client/internal/config"
	"github.com/ktabnet/ktabnet-client/internal/credential"
	"github.com/ktabnet/ktabnet-client/internal/metrics"
	"github.com/ktabnet/ktabnet-client/internal/notify"
	"github.com/ktabnet/ktabnet-client/internal/realtime"
	"github.com/ktabnet/ktabnet-client/internal/rest"
	"github.com/ktabnet/ktabnet-client/internal/wire"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("ktabnetd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_url", cfg.Client.ServerURL,
		"token_file", cfg.Client.TokenFile,
		"reconnect_delay", cfg.Client.ReconnectDelay,
	)

	if err := os.MkdirAll(filepath.Dir(cfg.Client.TokenFile), 0o700); err != nil {
		slog.Error("could not create token directory", "err", err)
		os.Exit(1)
	}
	creds, err := credential.New(cfg.Client.TokenFile)
	if err != nil {
		slog.Error("could not open credential store", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	met := metrics.New(prometheus.DefaultRegisterer)
	api := rest.New(cfg.Client.ServerURL, creds, cfg.Client.RequestTimeout)

	manager := realtime.New(cfg.Client.WSURL(), creds, cfg.Client.ReconnectDelay, met)

	center := notify.NewCenter(api, notify.CommandAlerter{
		SoundCmd: cfg.Client.Alert.SoundCmd,
		PopupCmd: cfg.Client.Alert.PopupCmd,
	}, met, nil)
	center.Attach(manager)
	defer center.Detach()

	// Log every frame type at debug level for troubleshooting.
	unsub := manager.Subscribe(wire.Wildcard, func(msg *wire.Message) {
		slog.Debug("frame received", "type", msg.Type)
	})
	defer unsub()

	// Optional Prometheus endpoint.
	if cfg.Client.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Client.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("metrics listening", "addr", cfg.Client.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server stopped", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	}

	// Session bootstrap: identify the user and pull the notification
	// snapshot after every (re)connect, so counters recover anything missed
	// while the socket was down.
	bootstrap := func() {
		user, err := api.Me(ctx)
		if err != nil {
			if errors.Is(err, rest.ErrUnauthorized) {
				slog.Warn("session rejected, waiting for a new login")
			} else {
				slog.Error("could not fetch session user", "err", err)
			}
			return
		}
		center.SetUser(user.ID)
		slog.Info("session user", "id", user.ID, "nickname", user.Nickname)

		if err := center.Refresh(ctx); err != nil {
			slog.Error("could not refresh notifications", "err", err)
			return
		}
		s := center.State()
		slog.Info("notification snapshot loaded",
			"notifications", len(s.Notifications),
			"unread_notifications", s.UnreadNotifications,
			"unread_messages", s.UnreadMessages,
		)
	}

	manager.SetOnConnect(bootstrap)

	if creds.Token() == "" {
		slog.Info("no session token yet — waiting for login", "token_file", cfg.Client.TokenFile)
	}

	// Connects when a session exists, then follows external login/logout via
	// the token file until shutdown.
	go func() {
		if err := manager.Run(ctx); err != nil {
			slog.Error("realtime manager stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("ktabnetd shutting down")
}
