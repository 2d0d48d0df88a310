package actorutil

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/events"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps a command received on a writable topic to
// the fleet request it stands for. A switch turned on moves its machine to
// the battery, off moves it to the grid.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.FleetCommandRequest, error) {
	switch cmd.Command {
	case mqtt.COMMAND_SWITCH:
		machineId, err := machineIdFromSwitch(cmd.DeviceId)
		if err != nil {
			return nil, err
		}
		var source domain.PowerSource
		switch strings.ToLower(cmd.Payload) {
		case mqtt.MQTT_PAYLOAD_ON:
			source = domain.SourceBattery
		case mqtt.MQTT_PAYLOAD_OFF:
			source = domain.SourceGrid
		default:
			return nil, fmt.Errorf("invalid switch payload %q", cmd.Payload)
		}
		return domain.SetMachineSourceRequest{MachineId: machineId, Source: source}, nil

	case mqtt.COMMAND_SELECT:
		if cmd.DeviceId != events.SELECT_ID_ACTIVE_SITE {
			return nil, fmt.Errorf("unknown select %q", cmd.DeviceId)
		}
		site, ok := domain.ParseSiteId(strings.ToUpper(cmd.Payload))
		if !ok {
			return nil, fmt.Errorf("unknown site %q", cmd.Payload)
		}
		return domain.SelectSiteRequest{Site: site}, nil

	case mqtt.COMMAND_BUTTON:
		switch cmd.DeviceId {
		case events.BUTTON_ID_SWITCH_ALL_GREEN:
			return domain.SwitchAllRequest{Source: domain.SourceBattery}, nil
		case events.BUTTON_ID_SWITCH_ALL_GRID:
			return domain.SwitchAllRequest{Source: domain.SourceGrid}, nil
		case events.BUTTON_ID_CLEAR_ALERTS:
			return domain.ClearAlertsRequest{}, nil
		}
		return nil, fmt.Errorf("unknown button %q", cmd.DeviceId)
	}
	return nil, fmt.Errorf("unknown command %q", cmd.Command)
}

func machineIdFromSwitch(deviceId string) (int, error) {
	raw, ok := strings.CutPrefix(deviceId, "machine_")
	if !ok {
		return 0, fmt.Errorf("unknown switch %q", deviceId)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 || id > domain.MACHINES_PER_SITE {
		return 0, fmt.Errorf("machine id out of range: %q", raw)
	}
	return id, nil
}
