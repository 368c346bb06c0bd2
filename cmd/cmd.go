package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/okte-integration/internal/pkg/config"
	"github.com/anicoll/okte-integration/internal/pkg/coordinator"
	"github.com/anicoll/okte-integration/internal/pkg/model"
	"github.com/anicoll/okte-integration/internal/pkg/mqtt"
	"github.com/anicoll/okte-integration/internal/pkg/okte"
	"github.com/anicoll/okte-integration/internal/pkg/publisher"
	"github.com/anicoll/okte-integration/internal/pkg/server"
	"github.com/anicoll/okte-integration/pkg/sockets"
)

const shutdownTimeout = 5 * time.Second

// RunCommand starts the poller, the publishers and the HTTP API.
func RunCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	return run(c.Context, cfg, okte.New(cfg.OkteCfg), logger)
}

// ValidateCommand checks that the configured OKTE endpoint answers.
func ValidateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	return validate(c.Context, cfg, okte.New(cfg.OkteCfg), logger)
}

func validate(ctx context.Context, cfg *config.Config, fetcher Fetcher, logger *zap.Logger) error {
	if err := fetcher.CheckConnectivity(ctx); err != nil {
		return err
	}
	logger.Info("OKTE API reachable",
		zap.String("name", cfg.Name),
		zap.String("url", cfg.OkteCfg.URL),
		zap.Stringer("range", cfg.OkteCfg.Range))
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("name") {
		cfg.Name = c.String("name")
	}
	if c.IsSet("okte-url") {
		cfg.OkteCfg.URL = c.String("okte-url")
	}
	if c.IsSet("okte-range") {
		if err := cfg.OkteCfg.Range.UnmarshalText([]byte(c.String("okte-range"))); err != nil {
			return nil, err
		}
	}
	if c.IsSet("poll-schedule") {
		cfg.PollSchedule = c.String("poll-schedule")
	}
	if c.IsSet("mqtt-host") {
		cfg.MqttCfg.Host = c.String("mqtt-host")
	}
	if c.IsSet("mqtt-user") {
		cfg.MqttCfg.Username = c.String("mqtt-user")
	}
	if c.IsSet("mqtt-pass") {
		cfg.MqttCfg.Password = c.String("mqtt-pass")
	}
	if c.IsSet("http-addr") {
		cfg.HTTPAddr = c.String("http-addr")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func run(ctx context.Context, cfg *config.Config, fetcher Fetcher, logger *zap.Logger) error {
	device := model.NewDevice(cfg.Name)
	registry := publisher.New()

	hub := sockets.New(sockets.WithLogger(logger))
	if err := registry.RegisterPublisher("sockets", publisher.NewSocketPublisher(hub)); err != nil {
		return err
	}

	if cfg.MqttCfg.Enabled() {
		mqttSvc := mqtt.Dial(cfg.MqttCfg, device, model.SensorsFor(cfg.OkteCfg.Range))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		defer func() {
			if err := mqttSvc.Close(); err != nil {
				logger.Warn("failed to close mqtt", zap.Error(err))
			}
		}()
		if err := registry.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	if err := registry.RegisterDevice(ctx, device); err != nil {
		return err
	}

	coord := coordinator.New(fetcher, registry,
		coordinator.WithSchedule(cfg.PollSchedule),
		coordinator.WithLogger(logger),
	)
	if err := coord.FirstRefresh(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      server.New(coord, hub).Handler(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return coord.Run(ctx)
	})

	eg.Go(func() error {
		logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("context done")
		_ = hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// A cancelled parent context is the normal way to stop.
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
