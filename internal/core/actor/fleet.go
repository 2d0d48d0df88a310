package actor

import (
	"fmt"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/config"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/service"
	. "github.com/johnnychen-a11y/energy-flow-insights/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const ADVICE_TIMEOUT = 2 * time.Second

// FleetActor drives the fleet store: it ticks the simulation, runs the
// timers of fleet commands and publishes a snapshot after every change.
type FleetActor struct {
	ActorWithStates
	scheduler   *scheduler.TimerScheduler
	stash       *Stash
	config      *config.Config
	store       port.FleetController
	timings     service.CommandTimings
	eventStream *eventstream.EventStream
	cancelTick  scheduler.CancelFunc
	timers      []scheduler.CancelFunc

	logger *zap.Logger
}

type fleetTick struct {
}

type commandStageTimer struct {
	Seq uint64
}

func NewFleetActor(config *config.Config, store port.FleetController, eventStream *eventstream.EventStream, logger *zap.Logger) *FleetActor {
	act := &FleetActor{
		config:      config,
		store:       store,
		timings:     service.TimingsFromConfig(config.Command),
		stash:       &Stash{},
		eventStream: eventStream,
		logger:      ActorLogger(domain.ACTOR_ID_FLEET, logger),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(FleetStartingState{
		actor: act,
	})
	return act
}

func (state *FleetActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Starting state

type FleetStartingState struct {
	ActorState
	actor *FleetActor
}

func (state FleetStartingState) Name() string {
	return "starting"
}

func (state FleetStartingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("fleet@starting started")

		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)
		interval := state.actor.config.Simulation.TickInterval()
		state.actor.cancelTick = state.actor.scheduler.SendRepeatedly(interval, interval, ctx.Self(), fleetTick{})

		// a command accepted before a restart keeps its deadlines
		if seq, elapsed, ok := state.actor.store.PendingCommand(); ok {
			state.actor.logger.Info("fleet@starting resuming command", zap.Uint64("seq", seq), zap.Duration("elapsed", elapsed))
			state.actor.scheduleCommand(ctx, seq, elapsed)
			state.actor.Become(FleetCommandState{
				actor: state.actor,
				seq:   seq,
			})
		} else {
			state.actor.Become(FleetIdleState{
				actor: state.actor,
			})
		}
		state.actor.publish()
		state.actor.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.actor.logger.Debug("fleet@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Idle state: no fleet command in flight

type FleetIdleState struct {
	ActorState
	actor *FleetActor
}

func (state FleetIdleState) Name() string {
	return "idle"
}

func (state FleetIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SwitchAllRequest:
		state.actor.logger.Debug("fleet@idle SwitchAllRequest", zap.String("source", string(msg.Source)))
		if _, ok := domain.ParsePowerSource(string(msg.Source)); !ok {
			ForRequest(msg).Respond(ctx, domain.SwitchAllResponse{
				CommandResponseMixIn: rejected(fmt.Errorf("%w: %q", domain.ErrInvalidSource, msg.Source)),
			})
			return
		}
		seq, accepted := state.actor.store.SwitchAll(msg.Source)
		if accepted {
			state.actor.scheduleCommand(ctx, seq, 0)
			state.actor.Become(FleetCommandState{
				actor: state.actor,
				seq:   seq,
			})
			state.actor.publish()
		}
		ForRequest(msg).Respond(ctx, domain.SwitchAllResponse{
			CommandResponseMixIn: domain.CommandResponseMixIn{Accepted: accepted},
		})
	default:
		state.actor.receiveCommon(ctx, state)
	}
}

// Command state: a fleet command is staged by its timers

type FleetCommandState struct {
	ActorState
	actor *FleetActor
	seq   uint64
}

func (state FleetCommandState) Name() string {
	return "command"
}

func (state FleetCommandState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SwitchAllRequest:
		state.actor.logger.Debug("fleet@command SwitchAllRequest ignored", zap.Uint64("inFlight", state.seq))
		ForRequest(msg).Respond(ctx, domain.SwitchAllResponse{})
	case commandStageTimer:
		status := state.actor.store.AdvanceCommand(msg.Seq)
		state.actor.logger.Debug("fleet@command stage", zap.Uint64("seq", msg.Seq), zap.String("status", string(status)))
		state.actor.publish()
		if msg.Seq == state.seq && status == domain.CommandIdle {
			state.actor.cancelCommandTimers()
			state.actor.Become(FleetIdleState{
				actor: state.actor,
			})
		}
	default:
		state.actor.receiveCommon(ctx, state)
	}
}

// receiveCommon handles the messages both running states answer the same way.
func (a *FleetActor) receiveCommon(ctx actor.Context, current ActorState) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		a.logger.Debug(fmt.Sprintf("fleet@%s ActorHealthRequest", current.Name()))
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_FLEET,
			Healthy: true,
			State:   current.Name(),
		})
	case fleetTick:
		a.store.Tick()
		a.publish()
	case commandStageTimer:
		// a timer of a command that already finished
		a.store.AdvanceCommand(msg.Seq)
	case domain.SelectSiteRequest:
		a.logger.Debug(fmt.Sprintf("fleet@%s SelectSiteRequest", current.Name()), zap.String("site", string(msg.Site)))
		if _, ok := domain.ParseSiteId(string(msg.Site)); !ok {
			ForRequest(msg).Respond(ctx, domain.SelectSiteResponse{
				CommandResponseMixIn: rejected(fmt.Errorf("%w: %q", domain.ErrUnknownSite, msg.Site)),
			})
			return
		}
		changed := a.store.SelectSite(msg.Site)
		if changed {
			a.publish()
		}
		ForRequest(msg).Respond(ctx, domain.SelectSiteResponse{
			CommandResponseMixIn: domain.CommandResponseMixIn{Accepted: true},
		})
	case domain.ToggleMachineRequest:
		a.logger.Debug(fmt.Sprintf("fleet@%s ToggleMachineRequest", current.Name()), zap.Int("machine", msg.MachineId))
		ForRequest(msg).Respond(ctx, domain.ToggleMachineResponse{
			CommandResponseMixIn: a.toggle(msg.MachineId, ""),
		})
	case domain.SetMachineSourceRequest:
		a.logger.Debug(fmt.Sprintf("fleet@%s SetMachineSourceRequest", current.Name()),
			zap.Int("machine", msg.MachineId), zap.String("source", string(msg.Source)))
		ForRequest(msg).Respond(ctx, domain.SetMachineSourceResponse{
			CommandResponseMixIn: a.toggle(msg.MachineId, msg.Source),
		})
	case domain.ClearAlertsRequest:
		cleared := a.store.ClearAlerts()
		a.logger.Debug(fmt.Sprintf("fleet@%s ClearAlertsRequest", current.Name()), zap.Int("cleared", cleared))
		a.publish()
		ForRequest(msg).Respond(ctx, domain.ClearAlertsResponse{
			CommandResponseMixIn: domain.CommandResponseMixIn{Accepted: true},
			Cleared:              cleared,
		})
	case domain.GetFleetSnapshotRequest:
		ForRequest(msg).Respond(ctx, domain.GetFleetSnapshotResponse{
			State: a.store.Snapshot(),
		})
	case domain.GetAlertsRequest:
		ForRequest(msg).Respond(ctx, domain.GetAlertsResponse{
			View: service.AlertCenter(a.store.Snapshot(), msg.Filter),
		})
	case domain.GetAdviceRequest:
		a.adviceTask(ctx, ForRequest(msg).ReplyTo(ctx))
	case *actor.Stopping:
		a.logger.Debug(fmt.Sprintf("fleet@%s stopping", current.Name()))
		a.stopTimers()
	case *actor.Restarting:
		a.stopTimers()
	default:
		a.logger.Debug(fmt.Sprintf("fleet@%s recv", current.Name()), zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// toggle flips a machine of the active site. With a target source it only
// flips when the machine is elsewhere.
func (a *FleetActor) toggle(machineId int, target domain.PowerSource) domain.CommandResponseMixIn {
	if machineId < 1 || machineId > domain.MACHINES_PER_SITE {
		return rejected(fmt.Errorf("%w: %d", domain.ErrUnknownMachine, machineId))
	}
	if target != "" {
		if _, ok := domain.ParsePowerSource(string(target)); !ok {
			return rejected(fmt.Errorf("%w: %q", domain.ErrInvalidSource, target))
		}
		snapshot := a.store.Snapshot()
		site := snapshot.Site(snapshot.ActiveSite)
		if site.Machines[site.MachineIndex(machineId)].Source == target {
			return domain.CommandResponseMixIn{Accepted: true}
		}
	}
	accepted := a.store.ToggleMachine(machineId)
	if accepted {
		a.publish()
	}
	return domain.CommandResponseMixIn{Accepted: accepted}
}

// scheduleCommand arms the stage timers of command seq, accepted elapsed ago.
// Deadlines already passed fire right away.
func (a *FleetActor) scheduleCommand(ctx actor.Context, seq uint64, elapsed time.Duration) {
	for _, deadline := range []time.Duration{a.timings.Sending, a.timings.Commit, a.timings.Reset} {
		delay := max(deadline-elapsed, 0)
		a.timers = append(a.timers, a.scheduler.RequestOnce(delay, ctx.Self(), commandStageTimer{Seq: seq}))
	}
}

func (a *FleetActor) cancelCommandTimers() {
	for _, cancel := range a.timers {
		cancel()
	}
	a.timers = nil
}

func (a *FleetActor) adviceTask(ctx actor.Context, replyTo *actor.PID) {
	if replyTo == nil {
		return
	}
	snapshot := a.store.Snapshot()
	NewBackgroundTaskNoError(ctx, func() *domain.GetAdviceResponse {
		return &domain.GetAdviceResponse{
			Site:        snapshot.ActiveSite,
			Suggestions: service.Advise(snapshot.Site(snapshot.ActiveSite)),
		}
	}).WithTimeout(ADVICE_TIMEOUT).Recover(func(err error) domain.GetAdviceResponse {
		a.logger.Error("fleet advice task failed", zap.Error(err))
		return domain.GetAdviceResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
			Site: snapshot.ActiveSite,
		}
	}).PipeTo(replyTo)
}

// publish announces the current snapshot and every alert raised since the
// previous call.
func (a *FleetActor) publish() {
	a.eventStream.Publish(domain.FleetSnapshotEvent{State: a.store.Snapshot()})
	for _, alert := range a.store.DrainAlerts() {
		a.eventStream.Publish(domain.AlertRaisedEvent{Alert: alert})
	}
}

func (a *FleetActor) stopTimers() {
	if a.cancelTick != nil {
		a.cancelTick()
		a.cancelTick = nil
	}
	a.cancelCommandTimers()
}

func rejected(err error) domain.CommandResponseMixIn {
	return domain.CommandResponseMixIn{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
	}
}
