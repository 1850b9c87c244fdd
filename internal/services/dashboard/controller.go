package dashboard

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/model/entities"
	sensorSimulator "github.com/LeonardoBeccarini/greenpower/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/greenpower/pkg/dedup"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

const (
	msgNoInitialIrrigation = "No initial irrigation performed"
	msgIrrigationOverdue   = "Last irrigation %d hours ago"
	msgIrrigationStarted   = "Starting irrigation system..."
	msgIrrigationDone      = "Irrigation completed successfully"
	msgLightsOn            = "Lights on"
	msgLightsOff           = "Lights off"
	msgOpeningCameras      = "Opening camera view..."
)

type Config struct {
	TelemetryInterval  time.Duration
	CheckInterval      time.Duration
	IrrigationDuration time.Duration
	OverdueAfter       time.Duration
	// OverdueDedupWindow suppresses identical overdue warnings for this long; 0 keeps every one.
	OverdueDedupWindow time.Duration

	PanelSize   int
	AlertsSize  int
	CameraCount int

	Clock    schedule.Clock
	Source   sensorSimulator.Source
	Observer Observer
	Logger   *zap.SugaredLogger
	NewID    func() string
}

// DefaultConfig holds the demo panel timings: 5s telemetry, 30s checks, 3s irrigation, 8h overdue.
func DefaultConfig() Config {
	return Config{
		TelemetryInterval:  5 * time.Second,
		CheckInterval:      30 * time.Second,
		IrrigationDuration: 3 * time.Second,
		OverdueAfter:       8 * time.Hour,
		PanelSize:          5,
		AlertsSize:         3,
		CameraCount:        4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TelemetryInterval <= 0 {
		c.TelemetryInterval = d.TelemetryInterval
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.IrrigationDuration <= 0 {
		c.IrrigationDuration = d.IrrigationDuration
	}
	if c.OverdueAfter <= 0 {
		c.OverdueAfter = d.OverdueAfter
	}
	if c.PanelSize <= 0 {
		c.PanelSize = d.PanelSize
	}
	if c.AlertsSize <= 0 {
		c.AlertsSize = d.AlertsSize
	}
	if c.CameraCount <= 0 {
		c.CameraCount = d.CameraCount
	}
	if c.Clock == nil {
		c.Clock = schedule.Real()
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	return c
}

// Snapshot is the read model handed to views.
type Snapshot struct {
	User              string                `json:"user"`
	Telemetry         model.Telemetry       `json:"telemetry"`
	TemperatureBand   model.TemperatureBand `json:"temperature_band"`
	HumidityBand      model.HumidityBand    `json:"humidity_band"`
	TemperatureGauge  float64               `json:"temperature_gauge"`
	HumidityGauge     float64               `json:"humidity_gauge"`
	Actuators         model.Actuators       `json:"actuators"`
	NotificationCount int                   `json:"notification_count"`
	ShowNotifications bool                  `json:"show_notifications"`
	Panel             []model.Notification  `json:"panel"`
	Alerts            []model.Notification  `json:"alerts"`
	CameraCount       int                   `json:"camera_count"`
	Timestamp         time.Time             `json:"timestamp"`
}

// Controller owns the state of one mounted dashboard. Every mutation, from a
// user action or a timer, runs under mu; observers and subscribers are called
// after mu is released, in mutation order.
type Controller struct {
	cfg   Config
	user  string
	clock schedule.Clock
	log   *zap.SugaredLogger

	mu        sync.Mutex
	mounted   bool
	group     *schedule.Group
	sim       *sensorSimulator.SensorSimulator
	monitor   *schedule.Task
	telemetry model.Telemetry
	actuators model.Actuators
	notes     NotificationLog
	showPanel bool
	overdue   *dedup.Deduper
	done      chan struct{}

	// emitMu orders deliveries; it is acquired while mu is held.
	emitMu sync.Mutex

	subsMu  sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)
}

// change collects what a mutation touched so it can be emitted unlocked.
type change struct {
	telemetry bool
	actuators bool
	notes     []model.Notification
	other     bool
}

func (ch change) empty() bool {
	return !ch.telemetry && !ch.actuators && len(ch.notes) == 0 && !ch.other
}

// New builds an unmounted Controller for user.
func New(user string, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:       cfg,
		user:      user,
		clock:     cfg.Clock,
		log:       cfg.Logger.With("user", user),
		telemetry: model.DefaultTelemetry(),
		overdue:   dedup.New(cfg.OverdueDedupWindow, 100, cfg.Clock.Now),
		done:      make(chan struct{}),
		subs:      make(map[int]func(Snapshot)),
	}
	gen := sensorSimulator.NewDataGenerator(cfg.Source, c.telemetry)
	c.sim = sensorSimulator.NewSensorSimulator(gen, c.onTelemetry)
	return c
}

func (c *Controller) User() string { return c.user }

// Mount starts the telemetry tick and the irrigation monitor. The monitor
// checks once immediately. Mounting twice is a no-op.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted || c.group != nil {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.group = schedule.NewGroup(c.clock)
	c.sim.Start(c.group, c.cfg.TelemetryInterval)
	ch := c.restartMonitorLocked()
	c.log.Infow("dashboard: mounted",
		"telemetry_every", c.cfg.TelemetryInterval, "check_every", c.cfg.CheckInterval)
	c.commitLocked(ch)
}

// Unmount cancels every pending timer. Callbacks already in flight find the
// controller unmounted and do nothing. A controller cannot be remounted.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	c.group.Stop()
	close(c.done)
	c.mu.Unlock()

	c.subsMu.Lock()
	c.subs = make(map[int]func(Snapshot))
	c.subsMu.Unlock()

	c.log.Infow("dashboard: unmounted")
}

// Done is closed when the dashboard is unmounted.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Mounted reports whether the dashboard is live.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// PendingTasks reports how many timers the dashboard still owns.
func (c *Controller) PendingTasks() int {
	c.mu.Lock()
	g := c.group
	c.mu.Unlock()
	if g == nil {
		return 0
	}
	return g.Pending()
}

// ===================== Actions =====================

// TriggerIrrigation starts an irrigation run unless one is in flight.
// It reports whether a run was started.
func (c *Controller) TriggerIrrigation() bool {
	c.mu.Lock()
	if !c.mounted || c.actuators.Irrigating {
		c.mu.Unlock()
		return false
	}
	c.actuators.Irrigating = true
	ch := change{actuators: true}
	ch.notes = append(ch.notes, c.appendLocked(entities.LevelInfo, entities.KindIrrigationStarted, msgIrrigationStarted))
	c.group.After(c.cfg.IrrigationDuration, c.completeIrrigation)
	c.commitLocked(ch)

	c.log.Infow("dashboard: irrigation started", "duration", c.cfg.IrrigationDuration)
	return true
}

func (c *Controller) completeIrrigation() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	now := c.clock.Now()
	c.actuators.Irrigating = false
	c.actuators.LastIrrigation = &now
	ch := change{actuators: true}
	ch.notes = append(ch.notes, c.appendLocked(entities.LevelSuccess, entities.KindIrrigationCompleted, msgIrrigationDone))
	mon := c.restartMonitorLocked()
	ch.notes = append(ch.notes, mon.notes...)
	c.commitLocked(ch)

	c.log.Infow("dashboard: irrigation completed", "at", now)
}

// ToggleLights flips the lights and returns the new state.
func (c *Controller) ToggleLights() bool {
	c.mu.Lock()
	if !c.mounted {
		on := c.actuators.LightsOn
		c.mu.Unlock()
		return on
	}
	c.actuators.LightsOn = !c.actuators.LightsOn
	on := c.actuators.LightsOn
	msg := msgLightsOff
	if on {
		msg = msgLightsOn
	}
	ch := change{actuators: true}
	ch.notes = append(ch.notes, c.appendLocked(entities.LevelInfo, entities.KindLights, msg))
	c.commitLocked(ch)

	c.log.Infow("dashboard: lights toggled", "on", on)
	return on
}

// ViewCameras only logs the request; the camera view is a stub.
func (c *Controller) ViewCameras() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	ch := change{}
	ch.notes = append(ch.notes, c.appendLocked(entities.LevelInfo, entities.KindCameras, msgOpeningCameras))
	c.commitLocked(ch)
}

// ClearNotifications empties the log and closes the panel.
func (c *Controller) ClearNotifications() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.notes.Clear()
	c.showPanel = false
	c.commitLocked(change{other: true})
}

// ToggleNotifications opens or closes the panel and returns whether it is open.
func (c *Controller) ToggleNotifications() bool {
	c.mu.Lock()
	if !c.mounted {
		open := c.showPanel
		c.mu.Unlock()
		return open
	}
	c.showPanel = !c.showPanel
	open := c.showPanel
	c.commitLocked(change{other: true})
	return open
}

// ===================== Read side =====================

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	act := c.actuators
	if act.LastIrrigation != nil {
		t := *act.LastIrrigation
		act.LastIrrigation = &t
	}
	return Snapshot{
		User:              c.user,
		Telemetry:         c.telemetry,
		TemperatureBand:   entities.ClassifyTemperature(c.telemetry.Temperature),
		HumidityBand:      entities.ClassifyHumidity(c.telemetry.Humidity),
		TemperatureGauge:  entities.TemperatureGauge(c.telemetry.Temperature),
		HumidityGauge:     entities.HumidityGauge(c.telemetry.Humidity),
		Actuators:         act,
		NotificationCount: c.notes.Len(),
		ShowNotifications: c.showPanel,
		Panel:             c.notes.Newest(c.cfg.PanelSize),
		Alerts:            c.notes.Oldest(c.cfg.AlertsSize),
		CameraCount:       c.cfg.CameraCount,
		Timestamp:         c.clock.Now(),
	}
}

// Notifications returns the whole log, oldest first.
func (c *Controller) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.All()
}

// Subscribe registers fn to receive a Snapshot after every change.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// ===================== Timers =====================

func (c *Controller) onTelemetry(step sensorSimulator.Step) {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.telemetry = step.After
	c.commitLocked(change{telemetry: true})

	c.log.Debugw("dashboard: telemetry tick",
		"temperature", step.After.Temperature, "humidity", step.After.Humidity)
}

// restartMonitorLocked replaces the monitor task and runs one check right away.
func (c *Controller) restartMonitorLocked() change {
	c.monitor.Stop()
	c.monitor = c.group.Every(c.cfg.CheckInterval, c.checkIrrigation)
	return c.checkLocked()
}

func (c *Controller) checkIrrigation() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.commitLocked(c.checkLocked())
}

func (c *Controller) checkLocked() change {
	kind, msg, ok := overdueWarning(c.actuators.LastIrrigation, c.clock.Now(), c.cfg.OverdueAfter)
	if !ok {
		return change{}
	}
	if !c.overdue.ShouldProcess(msg) {
		c.log.Debugw("dashboard: overdue warning suppressed", "message", msg)
		return change{}
	}
	return change{notes: []model.Notification{c.appendLocked(entities.LevelWarning, kind, msg)}}
}

// overdueWarning returns the warning due for last at now, if any.
func overdueWarning(last *time.Time, now time.Time, after time.Duration) (model.NotificationKind, string, bool) {
	if last == nil {
		return entities.KindIrrigationMissing, msgNoInitialIrrigation, true
	}
	elapsed := now.Sub(*last)
	if elapsed <= after {
		return "", "", false
	}
	hours := int(math.Floor(elapsed.Hours()))
	return entities.KindIrrigationOverdue, fmt.Sprintf(msgIrrigationOverdue, hours), true
}

// ===================== Helpers =====================

func (c *Controller) appendLocked(level model.Level, kind model.NotificationKind, msg string) model.Notification {
	n := model.Notification{
		ID:      c.cfg.NewID(),
		At:      c.clock.Now(),
		Level:   level,
		Kind:    kind,
		Message: msg,
	}
	c.notes.Append(n)
	return n
}

// commitLocked releases mu and delivers ch with the snapshot taken while mu
// was still held. emitMu is taken before mu is released, so deliveries
// follow mutation order. Observers and subscribers must not call back into
// the Controller.
func (c *Controller) commitLocked(ch change) {
	if ch.empty() {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	c.emit(ch, snap)
}

func (c *Controller) emit(ch change, snap Snapshot) {

	if ch.telemetry {
		c.cfg.Observer.TelemetryUpdated(model.TelemetryEvent{
			User:        c.user,
			Temperature: snap.Telemetry.Temperature,
			Humidity:    snap.Telemetry.Humidity,
			Timestamp:   snap.Timestamp,
		})
	}
	if ch.actuators {
		c.cfg.Observer.ActuatorsChanged(model.ActuatorEvent{
			User:           c.user,
			Irrigating:     snap.Actuators.Irrigating,
			LightsOn:       snap.Actuators.LightsOn,
			LastIrrigation: snap.Actuators.LastIrrigation,
			Timestamp:      snap.Timestamp,
		})
	}
	for _, n := range ch.notes {
		c.cfg.Observer.NotificationAdded(model.NotificationEvent{
			User:      c.user,
			ID:        n.ID,
			Kind:      string(n.Kind),
			Level:     string(n.Level),
			Message:   n.Message,
			Timestamp: n.At,
		})
	}

	c.subsMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
