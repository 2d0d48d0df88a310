package actor

import (
	"testing"
	"time"

	adactor "github.com/johnnychen-a11y/energy-flow-insights/internal/adapter/actor"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/service"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/mqtt"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	context := as.Root

	store := service.NewFleetStore(service.OptionsFromConfig(&cfg, logger))
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, store, &eventstream.EventStream{}, nil, nil, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	require.NoError(t, err)
	defer context.Stop(pid)

	hcr, err := healthCheck(context, pid)
	require.NoError(t, err)
	assert.True(t, hcr.Healthy, "healthy is true")
	assert.Equal(t, "2/2", hcr.State)

	res, err := context.RequestFuture(pid, domain.SelectSiteRequest{Site: domain.SiteC}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.True(t, res.(domain.SelectSiteResponse).Accepted)

	res, err = context.RequestFuture(pid, domain.GetFleetSnapshotRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, domain.SiteC, res.(domain.GetFleetSnapshotResponse).State.ActiveSite)
}

func TestMasterActorRoutesMQTTCommands(t *testing.T) {

	cfg := util.LoadTestConfig()
	cfg.MQTT.Enable = true
	cfg.MQTT.HADiscoveryEnable = true
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	context := as.Root

	sink := make(chan any, 256)
	store := service.NewFleetStore(service.OptionsFromConfig(&cfg, logger))
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, store, &eventstream.EventStream{}, nil, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger, sink)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master_mqtt")
	require.NoError(t, err)
	defer context.Stop(pid)

	hcr, err := healthCheck(context, pid)
	require.NoError(t, err)
	assert.True(t, hcr.Healthy)
	assert.Equal(t, "3/3", hcr.State)

	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: "active_site",
		Command:  mqtt.COMMAND_SELECT,
		Payload:  "B",
	}})

	assert.Eventually(t, func() bool {
		return store.Snapshot().ActiveSite == domain.SiteB
	}, 2*time.Second, 20*time.Millisecond)

	// discovery and sensor updates reach the MQTT actor
	var sawDiscovery, sawSensor bool
	deadline := time.After(3 * time.Second)
	for !(sawDiscovery && sawSensor) {
		select {
		case msg := <-sink:
			switch msg.(type) {
			case domain.PublishDiscoveryRequest:
				sawDiscovery = true
			case domain.PublishSensorUpdateRequest:
				sawSensor = true
			}
		case <-deadline:
			t.Fatalf("discovery=%t sensor=%t", sawDiscovery, sawSensor)
		}
	}
}
