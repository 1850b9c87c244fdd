// Headless telemetry feed: runs the same random walk as a dashboard session
// and prints it, or publishes it on <prefix>/telemetry when -mqtt-host is set.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/model/entities"
	sensorSimulator "github.com/LeonardoBeccarini/greenpower/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/greenpower/internal/services/event"
	"github.com/LeonardoBeccarini/greenpower/pkg/logger"
	"github.com/LeonardoBeccarini/greenpower/pkg/rabbitmq"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

func main() {
	// define flags
	user := flag.String("user", "simulator", "user tag on published readings")
	interval := flag.Duration("interval", 5*time.Second, "tick interval")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	host := flag.String("mqtt-host", "", "MQTT broker host; empty prints to stdout")
	port := flag.Int("mqtt-port", 1883, "MQTT broker port")
	clientID := flag.String("client-id", "greenpower-sim", "MQTT client ID")
	prefix := flag.String("topic-prefix", "greenhouse", "MQTT topic prefix")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log, flush, err := logger.Install(*logLevel, "console")
	if err != nil {
		color.Red("sensor-sim: %v", err)
		os.Exit(1)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src sensorSimulator.Source
	if *seed != 0 {
		src = sensorSimulator.NewSource(*seed)
	}
	generator := sensorSimulator.NewDataGenerator(src, entities.DefaultTelemetry())

	publish := printReading
	if *host != "" {
		client, err := rabbitmq.NewRabbitMQConn(&rabbitmq.RabbitMQConfig{
			Host:     *host,
			Port:     *port,
			User:     os.Getenv("MQTT_USER"),
			Password: os.Getenv("MQTT_PASSWORD"),
			ClientID: *clientID,
			Logger:   log,
		}, ctx)
		if err != nil {
			log.Fatalw("sensor-sim: mqtt connect", "error", err)
		}
		defer rabbitmq.CloseRabbitMQConn(client, log)

		mirror := event.NewMirror(*prefix, func(topic string) rabbitmq.IPublisher {
			return rabbitmq.NewPublisher(client, topic, 0)
		})
		defer mirror.Close()
		publish = func(e model.TelemetryEvent) {
			if err := mirror.Send(event.FromTelemetry(e)); err != nil {
				zap.S().Warnw("sensor-sim: publish failed", "error", err)
			}
		}
		log.Infow("sensor-sim: publishing", "topic", mirror.TopicFor(event.TopicTelemetry), "interval", *interval)
	}

	group := schedule.NewGroup(schedule.Real())
	defer group.Stop()
	sim := sensorSimulator.NewSensorSimulator(generator, func(s sensorSimulator.Step) {
		publish(model.TelemetryEvent{
			User:        *user,
			Temperature: s.After.Temperature,
			Humidity:    s.After.Humidity,
			Timestamp:   time.Now(),
		})
	})
	sim.Start(group, *interval)

	<-ctx.Done()
	log.Infow("sensor-sim: stopping")
}

func printReading(e model.TelemetryEvent) {
	t := entities.ClassifyTemperature(e.Temperature)
	h := entities.ClassifyHumidity(e.Humidity)
	color.Cyan("%s  %5.1f°C (%s)  %5.1f%% (%s)",
		e.Timestamp.Format("15:04:05"), e.Temperature, t, e.Humidity, h)
}
