package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/johnnychen-a11y/energy-flow-insights/internal/adapter/actor"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/service"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMetrics struct {
	mu     sync.Mutex
	fleets int
	alerts int
}

func (m *fakeMetrics) ObserveFleet(domain.FleetState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fleets++
}

func (m *fakeMetrics) ObserveAlert(domain.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts++
}

func (m *fakeMetrics) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fleets, m.alerts
}

func TestTelemetryActor(t *testing.T) {
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	context := as.Root

	sink := make(chan any, 256)
	mqttPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewTestMQTTActor(&cfg, logger, sink)
	}))

	es := &eventstream.EventStream{}
	metrics := &fakeMetrics{}
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewTelemetryActor(&cfg, mqttPID, es, metrics, logger)
	}))
	defer context.Stop(pid)

	hcr, err := healthCheck(context, pid)
	require.NoError(t, err)
	assert.True(t, hcr.Healthy)

	state := service.NewFleetStore(service.OptionsFromConfig(&cfg, logger)).Snapshot()
	es.Publish(domain.FleetSnapshotEvent{State: state})
	es.Publish(domain.AlertRaisedEvent{Alert: domain.Alert{Id: "x", SiteId: domain.SiteA, Type: domain.AlertGreenShortage}})

	assert.Eventually(t, func() bool {
		fleets, alerts := metrics.counts()
		return fleets == 1 && alerts == 1
	}, 2*time.Second, 10*time.Millisecond)

	var sensors int
	var alert bool
	deadline := time.After(2 * time.Second)
	for sensors == 0 || !alert {
		select {
		case msg := <-sink:
			switch msg.(type) {
			case domain.PublishSensorUpdateRequest:
				sensors++
			case domain.PublishAlertRequest:
				alert = true
			}
		case <-deadline:
			t.Fatalf("sensors=%d alert=%t", sensors, alert)
		}
	}
}
