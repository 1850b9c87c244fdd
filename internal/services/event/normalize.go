package event

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// EventToPoint normalizza CommonEvent in un *write.Point per InfluxDB.
func EventToPoint(evt CommonEvent) *write.Point {
	tags := map[string]string{
		"event_type": evt.EventType,
		"severity":   evt.Severity,
	}
	if evt.User != "" {
		tags["user"] = evt.User
	}

	fields := map[string]interface{}{}
	for k, v := range evt.Fields {
		fields[k] = v
	}
	// almeno un field per punto
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	measurement := evt.Measurement
	if measurement == "" {
		measurement = MeasurementEvent
	}
	return influxdb2.NewPoint(measurement, tags, fields, evt.Timestamp)
}
