package app

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/model/entities"
	"github.com/LeonardoBeccarini/greenpower/internal/services/dashboard"
	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

var viewFuncs = template.FuncMap{
	"celsius": func(v float64) string { return fmt.Sprintf("%.1f°C", v) },
	"percent": func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
	"clock":   func(t time.Time) string { return t.Format("15:04:05") },
}

func parseViews() (*template.Template, error) {
	t, err := template.New("views").Funcs(viewFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("gateway: parse views: %w", err)
	}
	return t, nil
}

// render executes into a buffer so a template error never sends half a page.
func (g *Gateway) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := g.views.ExecuteTemplate(&buf, name, data); err != nil {
		g.log.Errorw("gateway: render view", "view", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type loginView struct {
	Username       string
	Alert          string
	Authenticating bool
	DemoUser       string
	DemoPassword   string
}

func newLoginView(username, alert string, authenticating bool) loginView {
	return loginView{
		Username:       username,
		Alert:          alert,
		Authenticating: authenticating,
		DemoUser:       session.DemoUsername,
		DemoPassword:   session.DemoPassword,
	}
}

type dashboardView struct {
	dashboard.Snapshot
	TemperatureLabel string
	HumidityLabel    string
	LastIrrigation   string
}

var temperatureLabels = map[model.TemperatureBand]string{
	entities.TemperatureCold:    "Cold",
	entities.TemperatureOptimal: "Optimal",
	entities.TemperatureWarm:    "Warm",
	entities.TemperatureHot:     "Hot",
}

var humidityLabels = map[model.HumidityBand]string{
	entities.HumidityLow:     "Low",
	entities.HumidityOptimal: "Optimal",
	entities.HumidityHigh:    "High",
}

func newDashboardView(s dashboard.Snapshot) dashboardView {
	last := "Pending"
	if s.Actuators.LastIrrigation != nil {
		last = s.Actuators.LastIrrigation.Format("15:04:05")
	}
	return dashboardView{
		Snapshot:         s,
		TemperatureLabel: temperatureLabels[s.TemperatureBand],
		HumidityLabel:    humidityLabels[s.HumidityBand],
		LastIrrigation:   last,
	}
}
