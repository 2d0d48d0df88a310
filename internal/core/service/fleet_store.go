package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
	"go.uber.org/zap"
)

const MAX_PENDING_ALERTS = 256

type FleetStoreOptions struct {
	Clock         port.Clock
	Rand          port.RandomSource
	Timings       CommandTimings
	AlertCooldown time.Duration
	MaxAlerts     int
	Logger        *zap.Logger
}

// FleetStore owns the fleet state. Every mutation holds the write lock for
// its whole duration and replaces the touched site as a unit.
type FleetStore struct {
	mu      sync.RWMutex
	state   domain.FleetState
	command *FleetCommand
	seq     uint64
	outbox  []domain.Alert

	model   *SiteModel
	alerts  *AlertEngine
	clock   port.Clock
	timings CommandTimings
	logger  *zap.Logger
}

func NewFleetStore(opts FleetStoreOptions) *FleetStore {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = NewRandomSource(0)
	}
	if opts.Timings == (CommandTimings{}) {
		opts.Timings = DefaultCommandTimings
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	store := &FleetStore{
		model:   &SiteModel{Rand: opts.Rand},
		alerts:  NewAlertEngine(opts.Clock, opts.AlertCooldown, opts.MaxAlerts, opts.Logger),
		clock:   opts.Clock,
		timings: opts.Timings,
		logger:  opts.Logger,
	}
	store.state = domain.FleetState{
		Sites:         make(map[domain.SiteId]domain.SiteState, len(domain.AllSites)),
		ActiveSite:    domain.SiteA,
		CommandStatus: domain.CommandIdle,
	}
	for _, id := range domain.AllSites {
		store.state.Sites[id] = store.model.NewSite()
	}
	return store
}

func (s *FleetStore) Snapshot() domain.FleetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *FleetStore) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range domain.AllSites {
		prev := s.state.Sites[id]
		next, balance := s.model.Step(prev)

		protected := ProtectionTriggered(prev.BatteryLevel, next.BatteryLevel)
		if protected {
			switched := ApplyProtection(&next)
			s.logger.Warn("protection: battery critical, machines moved to grid",
				zap.String("site", string(id)), zap.Float64("soc", next.BatteryLevel), zap.Ints("machines", switched))
		}

		raised := s.alerts.Evaluate(id, &next, protected)
		s.state.Sites[id] = next
		s.enqueue(raised...)

		s.logger.Debug("tick",
			zap.String("site", string(id)),
			zap.Float64("soc", next.BatteryLevel),
			zap.Float64("solar", next.SolarOutput),
			zap.Float64("totalLoad", balance.TotalLoad),
			zap.Float64("greenLoad", balance.GreenLoad))
	}
}

// SelectSite panics for ids outside the fleet. It reports whether the active
// site changed.
func (s *FleetStore) SelectSite(id domain.SiteId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Sites[id]; !ok {
		panic(fmt.Sprintf("unknown site id %q", id))
	}
	if s.state.ActiveSite == id {
		return false
	}
	s.state.ActiveSite = id
	return true
}

// ToggleMachine flips the source of a machine in the active site. A flip to
// the battery while the site is critical is rejected.
func (s *FleetStore) ToggleMachine(machineId int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.ActiveSite
	site := s.state.Site(id).Clone()
	machine := &site.Machines[site.MachineIndex(machineId)]

	from := machine.Source
	to := from.Other()
	if to == domain.SourceBattery && site.IsCritical() {
		s.logger.Info("toggle rejected: battery critical", zap.String("site", string(id)), zap.Int("machine", machineId))
		return false
	}
	machine.Source = to

	alert := s.alerts.SourceSwitch(id, &site, machineId, from, to)
	s.state.Sites[id] = site
	s.enqueue(alert)
	return true
}

// SwitchAll accepts a fleet command against the active site when no other
// command is in flight. The returned seq identifies the command for
// AdvanceCommand.
func (s *FleetStore) SwitchAll(source domain.PowerSource) (uint64, bool) {
	if _, ok := domain.ParsePowerSource(string(source)); !ok {
		panic(fmt.Sprintf("unknown power source %q", source))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a command whose timers were lost still expires on the clock
	s.advance()
	if s.state.CommandStatus != domain.CommandIdle || s.command != nil {
		s.logger.Debug("switch all ignored: command in flight", zap.String("status", string(s.state.CommandStatus)))
		return 0, false
	}

	s.seq++
	s.command = &FleetCommand{
		Seq:        s.seq,
		AcceptedAt: s.clock.Now(),
		Site:       s.state.ActiveSite,
		Source:     source,
		Stage:      domain.CommandSending,
	}
	s.state.CommandStatus = domain.CommandSending
	s.logger.Info("switch all accepted",
		zap.Uint64("seq", s.seq), zap.String("site", string(s.command.Site)), zap.String("source", string(source)))
	return s.seq, true
}

// AdvanceCommand re-evaluates the stage of command seq against the clock.
// Calls for a command that already finished are ignored.
func (s *FleetStore) AdvanceCommand(seq uint64) domain.CommandStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.command == nil || s.command.Seq != seq {
		return s.state.CommandStatus
	}
	return s.advance()
}

// PendingCommand reports the command in flight, if any, and how long ago it
// was accepted.
func (s *FleetStore) PendingCommand() (uint64, time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.command == nil {
		return 0, 0, false
	}
	return s.command.Seq, s.clock.Now().Sub(s.command.AcceptedAt), true
}

func (s *FleetStore) advance() domain.CommandStatus {
	if s.command == nil {
		return s.state.CommandStatus
	}
	status := s.command.Advance(s.clock.Now(), s.timings, s.commitFleetSwitch)
	s.state.CommandStatus = status
	if s.command.Done() {
		s.command = nil
	}
	return status
}

// commitFleetSwitch reads the site as it is now, not as it was when the
// command was accepted.
func (s *FleetStore) commitFleetSwitch(c *FleetCommand) bool {
	site := s.state.Site(c.Site).Clone()
	if c.Source == domain.SourceBattery && site.IsCritical() {
		s.logger.Warn("switch all aborted: battery critical",
			zap.Uint64("seq", c.Seq), zap.String("site", string(c.Site)), zap.Float64("soc", site.BatteryLevel))
		return false
	}
	for i := range site.Machines {
		site.Machines[i].Source = c.Source
	}
	alert := s.alerts.FleetSwitch(c.Site, &site, c.Source)
	s.state.Sites[c.Site] = site
	s.enqueue(alert)
	return true
}

// ClearAlerts empties the alert log of the active site and returns how many
// entries it dropped.
func (s *FleetStore) ClearAlerts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.ActiveSite
	site := s.state.Site(id).Clone()
	cleared := len(site.Alerts)
	site.Alerts = nil
	s.state.Sites[id] = site
	return cleared
}

// DrainAlerts returns the alerts raised since the previous call.
func (s *FleetStore) DrainAlerts() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.outbox
	s.outbox = nil
	return out
}

func (s *FleetStore) enqueue(alerts ...domain.Alert) {
	s.outbox = append(s.outbox, alerts...)
	if over := len(s.outbox) - MAX_PENDING_ALERTS; over > 0 {
		s.outbox = s.outbox[over:]
	}
}

// ensure interface compliance
var _ port.FleetController = (*FleetStore)(nil)
