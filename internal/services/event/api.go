package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Irrigation is one completed irrigation run read back from InfluxDB.
type Irrigation struct {
	User string `json:"user,omitempty"`
	Time string `json:"time"` // RFC3339
}

type irrQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseIrr(r *http.Request, defMin, defLim, defTOms int) irrQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return irrQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q and r.event_type == "irrigation.completed")
  |> filter(fn: (r) => r._field == "count")
  |> keep(columns: ["_time","_value","user"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, MeasurementEvent, limit)
}

func runIrr(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string, defMin, defLim int) {
	p := parseIrr(r, defMin, defLim, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	res, err := influx.QueryAPI(org).Query(ctx, buildFlux(bucket, p.Minutes, p.Limit))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]Irrigation, 0, p.Limit)
	for res.Next() {
		rec := res.Record()
		var user string
		if v, ok := rec.ValueByKey("user").(string); ok {
			user = strings.TrimSpace(v)
		}
		out = append(out, Irrigation{
			User: user,
			Time: rec.Time().UTC().Format(time.RFC3339),
		})
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// NewIrrigationLatestHandler serves GET /events/irrigation/latest?limit=20[&minutes=1440].
// It is an operator view of the mirrored history and never feeds a session.
func NewIrrigationLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runIrr(w, r, influx, org, bucket, 1440, 20)
	})
}
