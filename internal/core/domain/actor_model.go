package domain

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_FLEET        = "fleet"
	ACTOR_ID_TELEMETRY    = "telemetry"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetFleetSnapshotRequest struct {
	ActorRequestMixIn
}

type GetFleetSnapshotResponse struct {
	ActorResponseMixIn
	State FleetState
}

type GetAlertsRequest struct {
	ActorRequestMixIn
	Filter AlertFilter
}

type GetAlertsResponse struct {
	ActorResponseMixIn
	View AlertCenterView
}

type GetAdviceRequest struct {
	ActorRequestMixIn
}

type GetAdviceResponse struct {
	ActorResponseMixIn
	Site        SiteId
	Suggestions []string
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishAlertRequest struct {
	ActorRequestMixIn
	Alert Alert
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors  []GenericSensor
	Switches []GenericSwitch
	Selects  []GenericSelect
	Buttons  []GenericButton
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
