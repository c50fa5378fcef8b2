package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kr/pretty"

	"thermostat/api"
	"thermostat/config"
	"thermostat/home"
	"thermostat/integration/mqtt"
	"thermostat/integration/ntfy"
	"thermostat/integration/zigbee"
	"thermostat/logger"
	"thermostat/presence"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Get(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalf("Failed to load config: %v", err)
	}

	log := logger.Get(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err)
	}
}

func notifyListener(ctx context.Context, n *ntfy.Notify, log *logger.Logger) zigbee.Listener {
	return func(e zigbee.Event) {
		if !e.Changed || e.Initial {
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := n.Thermostat(ctx, e.Status); err != nil {
				log.Warnf("Failed to notify: %v", err)
			}
		}()
	}
}

// awayHandler turns the heating off when nobody is home.
func awayHandler(h *home.Home, log *logger.Logger) func(present bool) {
	return func(present bool) {
		if present {
			return
		}

		if err := h.TurnAllOff(); err != nil {
			log.Warn(err)
		}
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	log.Debugf("Thermostats: %s", pretty.Sprint(cfg.Thermostats))

	client, err := mqtt.New(cfg.MQTT, log.Named("mqtt"))
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	h := home.New(log)
	srv := api.New(h, log.Named("api"))
	defer srv.Close()

	n := ntfy.New(cfg.NTFY)

	opts := zigbee.Options{
		Prefix:       cfg.Zigbee.MQTTPrefix,
		EnablePrefix: cfg.Enable.MQTTPrefix,
		Availability: cfg.Availability,
	}

	for name, tc := range cfg.Thermostats {
		t := zigbee.NewThermostat(name, tc.Mode, client, opts, log)
		t.OnChange(srv.Publish)
		if n.Enabled() {
			t.OnChange(notifyListener(ctx, n, log))
		}

		if err := t.Start(); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}
		defer t.Stop()

		h.AddDevice(t)
	}

	if err := zigbee.DevicesHandler(client, cfg.Zigbee.MQTTPrefix, h, log.Named("zigbee")); err != nil {
		return err
	}

	if cfg.Presence.MQTTPrefix != "" {
		p := presence.New(cfg.Presence.MQTTPrefix, log.Named("presence"), awayHandler(h, log))
		if err := p.Start(client); err != nil {
			return err
		}
	}

	server := http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (PID: %d)", cfg.HTTP.Addr, os.Getpid())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
