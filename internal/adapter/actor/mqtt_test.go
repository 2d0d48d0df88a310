package actor

import (
	"testing"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/mqtt"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util"
	"github.com/johnnychen-a11y/energy-flow-insights/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	context := as.Root

	sink := make(chan any, 8)
	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, logger, sink) })
	pid := context.Spawn(props)
	defer context.Stop(pid)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ActorHealthResponse)
	require.True(t, ok)
	assert.True(t, resp.Healthy)
	assert.Equal(t, domain.ACTOR_ID_MQTT, resp.Id)

	alert := domain.Alert{Id: "a1", SiteId: domain.SiteB, Type: domain.AlertSocLow}
	context.Send(pid, domain.PublishAlertRequest{Alert: alert})

	select {
	case msg := <-sink:
		req, ok := msg.(domain.PublishAlertRequest)
		require.True(t, ok)
		assert.Equal(t, "a1", req.Alert.Id)
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not received")
	}

	_, err = context.RequestFuture(pid, domain.PublishMessageRequest{Topic: "t", Payload: "p"}, 2*time.Second).Result()
	assert.NoError(t, err)
}

func TestEvent2MQTTMessage(t *testing.T) {
	cfg := util.LoadTestConfig()
	client := mqtt.CreateMQTTClient(&cfg, mqtt.OptsFromConfig(&cfg), nil, nil)

	msg := event2MQTTMessage(client, domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "site_a_soc"},
		Value:                  45.678,
		Decimals:               1,
	})
	require.NotNil(t, msg)
	assert.Equal(t, "fleetwatch_test/sensor/site_a_soc/state", msg.topic)
	assert.Equal(t, "45.7", msg.message)
	assert.False(t, msg.retain)

	msg = event2MQTTMessage(client, domain.SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "machine_2"},
		Value:                  true,
	})
	require.NotNil(t, msg)
	assert.Equal(t, "fleetwatch_test/switch/machine_2/state", msg.topic)
	assert.Equal(t, mqtt.MQTT_PAYLOAD_ON, msg.message)
	assert.True(t, msg.retain)

	msg = event2MQTTMessage(client, domain.SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "active_site"},
		Value:                  "C",
	})
	require.NotNil(t, msg)
	assert.Equal(t, "fleetwatch_test/select/active_site/state", msg.topic)
	assert.Equal(t, "C", msg.message)

	msg = event2MQTTMessage(client, domain.BridgeStateUpdateEvent{Value: false})
	require.NotNil(t, msg)
	assert.Equal(t, "fleetwatch_test/bridge/state", msg.topic)
	assert.Equal(t, mqtt.MQTT_PAYLOAD_OFFLINE, msg.message)
}
