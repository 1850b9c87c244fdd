package event

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
)

type fakeMQTT struct {
	mqtt.Client
	open bool
}

func (f fakeMQTT) IsConnectionOpen() bool { return f.open }

func TestCheckWithNothingEnabled(t *testing.T) {
	st := Dependencies{}.Check()
	assert.Equal(t, "ok", st.Status)
	assert.False(t, st.MQTTEnabled)
	assert.False(t, st.InfluxEnabled)
	assert.Nil(t, st.LastWriteErrorS)
}

func TestCheckMQTT(t *testing.T) {
	assert.Equal(t, "ok", Dependencies{MQTT: fakeMQTT{open: true}}.Check().Status)
	assert.Equal(t, "down", Dependencies{MQTT: fakeMQTT{open: false}}.Check().Status)
}

func TestReadyHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewReadyHandler(Dependencies{MQTT: fakeMQTT{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewReadyHandler(Dependencies{MinErrorAge: time.Second}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandlerAlwaysAnswers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(Dependencies{MQTT: fakeMQTT{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"down"`)
}

func TestParseIrrClamps(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/events/irrigation/latest?limit=9999&minutes=0", nil)
	p := parseIrr(r, 1440, 20, 2000)
	assert.Equal(t, 500, p.Limit)
	assert.Equal(t, 1, p.Minutes)
	assert.Equal(t, 2000, p.TimeoutMS)
	assert.Contains(t, buildFlux("events", 60, 5), `r._measurement == "dashboard_event"`)
}
