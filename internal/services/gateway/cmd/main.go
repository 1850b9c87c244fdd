package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fatih/color"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/greenpower/internal/services/dashboard"
	"github.com/LeonardoBeccarini/greenpower/internal/services/event"
	"github.com/LeonardoBeccarini/greenpower/internal/services/gateway/app"
	"github.com/LeonardoBeccarini/greenpower/internal/services/gateway/metrics"
	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
	"github.com/LeonardoBeccarini/greenpower/pkg/logger"
	"github.com/LeonardoBeccarini/greenpower/pkg/rabbitmq"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

const grpcServiceName = "greenpower.Gateway"

func main() {
	cfg, dotenv := loadConfig()

	log, flush, err := logger.Install(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		color.Red("gateway: %v", err)
		os.Exit(1)
	}
	defer flush()
	if dotenv {
		log.Infow("gateway: loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warnw("gateway: SESSION_SECRET not set, cookies will not survive a restart")
	}

	// === Observers ===
	m := metrics.New()
	observers := dashboard.Observers{m}
	var workers sync.WaitGroup
	runObserver := func(o *event.Observer) {
		observers = append(observers, o)
		workers.Add(1)
		go func() {
			defer workers.Done()
			o.Run(ctx)
		}()
	}
	breaker := event.BreakerConfig{Failures: cfg.BreakerFailures, OpenFor: cfg.BreakerOpenFor}
	deps := event.Dependencies{MinErrorAge: 30 * time.Second}

	// === MQTT mirror ===
	var (
		mirror *event.Mirror
		client mqtt.Client
	)
	if cfg.MQTTHost != "" {
		client, err = rabbitmq.NewRabbitMQConn(&rabbitmq.RabbitMQConfig{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
			Logger:   log,
		}, ctx)
		if err != nil {
			log.Errorw("gateway: mqtt mirror disabled", "error", err)
		} else {
			deps.MQTT = client
			mirror = event.NewMirror(cfg.MQTTTopicPrefix, func(topic string) rabbitmq.IPublisher {
				return rabbitmq.NewPublisher(client, topic, 0)
			})
			runObserver(event.NewObserver("mqtt", mirror, event.ObserverConfig{Breaker: breaker, Logger: log}))
		}
	}

	// === InfluxDB ===
	var (
		influx  influxdb2.Client
		writer  *event.Writer
		history http.Handler
	)
	if cfg.InfluxURL != "" {
		opts := influxdb2.DefaultOptions().SetBatchSize(50).SetFlushInterval(1000)
		influx = influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
		writer = event.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket), log)
		deps.Influx = influx
		deps.Writer = writer
		history = event.NewIrrigationLatestHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket)
		runObserver(event.NewObserver("influx", writer, event.ObserverConfig{Breaker: breaker, Logger: log}))
	}

	// === Sessions ===
	registry, err := session.NewRegistry(session.Config{
		LoginLatency: cfg.LoginLatency,
		Observer:     m,
		Logger:       log,
		Dashboard: dashboard.Config{
			TelemetryInterval:  cfg.TelemetryInterval,
			CheckInterval:      cfg.IrrigationCheckInterval,
			IrrigationDuration: cfg.IrrigationDuration,
			OverdueAfter:       cfg.IrrigationOverdueAfter,
			OverdueDedupWindow: cfg.OverdueDedupWindow,
			Observer:           observers,
		},
	})
	if err != nil {
		log.Fatalw("gateway: session registry", "error", err)
	}
	housekeeping := schedule.NewGroup(schedule.Real())
	housekeeping.Every(time.Hour, func() { registry.Sweep(cfg.SessionIdle) })

	// === HTTP ===
	gw, err := app.NewGateway(app.Config{
		Registry:      registry,
		SessionSecret: []byte(secret),
		CookieSecure:  cfg.CookieSecure,
		CookieMaxAge:  cfg.SessionIdle,
		Metrics:       m,
		Health:        deps,
		History:       history,
		Logger:        log,
	})
	if err != nil {
		log.Fatalw("gateway: init", "error", err)
	}
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           gw.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infow("gateway: listening", "addr", hs.Addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("gateway: http server error", "error", err)
		}
	}()

	// === gRPC health ===
	var (
		grpcServer *grpc.Server
		grpcHealth *health.Server
	)
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			log.Fatalw("gateway: grpc listen", "port", cfg.GRPCHealthPort, "error", err)
		}
		grpcServer = grpc.NewServer()
		grpcHealth = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, grpcHealth)
		grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		grpcHealth.SetServingStatus(grpcServiceName, healthpb.HealthCheckResponse_SERVING)
		go func() {
			log.Infow("gateway: grpc health listening", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				log.Errorw("gateway: grpc serve error", "error", err)
			}
		}()
	}

	banner(cfg, mirror != nil, influx != nil)

	// === Wait for signal ===
	<-ctx.Done()
	log.Infow("gateway: shutting down...")

	if grpcHealth != nil {
		grpcHealth.Shutdown()
	}
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shCtx); err != nil {
		log.Warnw("gateway: http shutdown", "error", err)
	}
	housekeeping.Stop()
	registry.Close()

	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shCtx.Done():
		log.Warnw("gateway: observers did not drain in time")
	}
	if writer != nil {
		writer.Flush()
		influx.Close()
	}
	if mirror != nil {
		mirror.Close()
		rabbitmq.CloseRabbitMQConn(client, log)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Infow("gateway: bye")
}

func banner(cfg Config, mqtt, influx bool) {
	on := func(b bool) string {
		if b {
			return color.GreenString("on")
		}
		return color.New(color.Faint).Sprint("off")
	}
	color.New(color.FgGreen, color.Bold).Println("Green Power gateway")
	color.Cyan("  http    :%s", cfg.Port)
	color.Cyan("  login   %s latency, telemetry every %s", cfg.LoginLatency, cfg.TelemetryInterval)
	color.White("  mqtt    %s   influx %s   grpc health %s", on(mqtt), on(influx), on(cfg.GRPCHealthPort != ""))
}
