package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchCommandParse(t *testing.T) {

	assert := assert.New(t)

	p := newCommandParser("loremTopic")
	cmd, err := p.parse("loremTopic/switch/machine_3/command", "on")

	require.NoError(t, err)
	assert.Equal("machine_3", cmd.DeviceId, "device extract")
	assert.Equal(COMMAND_SWITCH, cmd.Command)
	assert.Equal("on", cmd.Payload)
}

func TestSwitchCommandParseFail(t *testing.T) {

	p := newCommandParser("loremTopic")
	_, err := p.parse("loremTopic/switch/machine_3/state", "on")

	assert.Error(t, err, "state topics are not commands")
}

func TestSelectCommandParse(t *testing.T) {

	assert := assert.New(t)

	p := newCommandParser("loremTopic")
	cmd, err := p.parse("loremTopic/select/active_site/set", "B")

	require.NoError(t, err)
	assert.Equal("active_site", cmd.DeviceId)
	assert.Equal(COMMAND_SELECT, cmd.Command)
}

func TestButtonCommandParse(t *testing.T) {

	assert := assert.New(t)

	p := newCommandParser("loremTopic")
	cmd, err := p.parse("loremTopic/button/clear_alerts/press", MQTT_PAYLOAD_PRESS)

	require.NoError(t, err)
	assert.Equal("clear_alerts", cmd.DeviceId)
	assert.Equal(COMMAND_BUTTON, cmd.Command)
}

func TestCommandParseOtherBaseTopic(t *testing.T) {

	p := newCommandParser("loremTopic")
	_, err := p.parse("ipsum/loremTopic/switch/machine_1/command", "on")

	assert.Error(t, err)
}
