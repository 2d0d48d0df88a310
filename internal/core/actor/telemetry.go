package actor

import (
	"fmt"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/config"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/events"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/port"
	. "github.com/johnnychen-a11y/energy-flow-insights/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// TelemetryActor turns fleet events into metrics and MQTT updates. Sensor
// values go out every poll interval; a change of command status or active
// site goes out immediately.
type TelemetryActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	mqttActor      *actor.PID
	config         *config.Config
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	metrics        port.FleetMetrics
	latest         *domain.FleetState
	published      *domain.FleetState
	cancelPoll     scheduler.CancelFunc

	logger *zap.Logger
}

type telemetryTick struct {
}

// NewTelemetryActor accepts a nil mqttActor when MQTT is disabled and nil
// metrics when metrics are disabled.
func NewTelemetryActor(config *config.Config, mqttActor *actor.PID, eventStream *eventstream.EventStream, metrics port.FleetMetrics, logger *zap.Logger) *TelemetryActor {
	act := &TelemetryActor{
		config:      config,
		mqttActor:   mqttActor,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_TELEMETRY, logger),
		eventStream: eventStream,
		metrics:     metrics,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *TelemetryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *TelemetryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("telemetry@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		interval := state.config.Monitor.PollInterval()
		state.cancelPoll = state.scheduler.SendRepeatedly(interval, interval, ctx.Self(), telemetryTick{})

		// subscribe to eventStream
		root, self := ctx.ActorSystem().Root, ctx.Self()
		state.eventStreamSub = state.eventStream.Subscribe(func(evt any) {
			switch evt.(type) {
			case domain.FleetSnapshotEvent, domain.AlertRaisedEvent:
				root.Send(self, evt)
			}
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("telemetry@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *TelemetryActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("telemetry@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_TELEMETRY,
			Healthy: true,
			State:   "idle",
		})
	case domain.FleetSnapshotEvent:
		snapshot := msg.State
		state.latest = &snapshot
		if state.metrics != nil {
			state.metrics.ObserveFleet(snapshot)
		}
		if state.published == nil ||
			state.published.CommandStatus != snapshot.CommandStatus ||
			state.published.ActiveSite != snapshot.ActiveSite {
			state.publishSensors(ctx)
		}
	case domain.AlertRaisedEvent:
		state.logger.Debug("telemetry@default AlertRaisedEvent", zap.String("site", string(msg.Alert.SiteId)), zap.String("type", string(msg.Alert.Type)))
		if state.metrics != nil {
			state.metrics.ObserveAlert(msg.Alert)
		}
		if state.mqttActor != nil {
			ctx.Send(state.mqttActor, domain.PublishAlertRequest{Alert: msg.Alert})
		}
	case telemetryTick:
		state.logger.Debug("telemetry@default tick")
		state.publishSensors(ctx)
	case *actor.Stopping:
		state.stop()
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("telemetry@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *TelemetryActor) publishSensors(ctx actor.Context) {
	if state.latest == nil {
		return
	}
	state.published = state.latest
	if state.mqttActor == nil {
		return
	}
	for _, ev := range events.FleetToUpdateEvents(*state.latest) {
		ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{Event: ev})
	}
}

func (state *TelemetryActor) stop() {
	if state.cancelPoll != nil {
		state.cancelPoll()
		state.cancelPoll = nil
	}
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
}
