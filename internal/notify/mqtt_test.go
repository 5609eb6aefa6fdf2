package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

func mqttSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Main.Name = "fox-report"
	settings.MQTT.Enabled = true
	settings.MQTT.Broker = "tcp://broker.example.org:1883"
	settings.MQTT.Topic = "frigate/fox/report"
	settings.MQTT.Retain = true
	return settings
}

func TestNewMQTTClientRequiresBroker(t *testing.T) {
	settings := mqttSettings()
	settings.MQTT.Broker = ""

	_, err := NewMQTTClient(settings)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestNewMQTTClientDefaultsClientID(t *testing.T) {
	client, err := NewMQTTClient(mqttSettings())
	require.NoError(t, err)

	internal, ok := client.(*mqttClient)
	require.True(t, ok)
	assert.Equal(t, "fox-report", internal.config.ClientID, "client id should fall back to the node name")
	assert.Equal(t, "frigate/fox/report", internal.config.Topic)
	assert.True(t, internal.config.Retain)
	assert.Equal(t, 30*time.Second, internal.config.ConnectTimeout)
	assert.Equal(t, 10*time.Second, internal.config.PublishTimeout)
}

func TestNewMQTTClientExplicitClientID(t *testing.T) {
	settings := mqttSettings()
	settings.MQTT.ClientID = "barn-node"

	client, err := NewMQTTClient(settings)
	require.NoError(t, err)

	internal, ok := client.(*mqttClient)
	require.True(t, ok)
	assert.Equal(t, "barn-node", internal.config.ClientID)
}

func TestConnectInvalidBrokerURL(t *testing.T) {
	settings := mqttSettings()
	settings.MQTT.Broker = "://missing-scheme"

	client, err := NewMQTTClient(settings)
	require.NoError(t, err)

	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.False(t, client.IsConnected())
}

func TestConnectUnresolvableBroker(t *testing.T) {
	settings := mqttSettings()
	settings.MQTT.Broker = "tcp://unresolvable.invalid:1883"

	client, err := NewMQTTClient(settings)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnection))
	assert.False(t, client.IsConnected())
}

func TestPublishNotConnected(t *testing.T) {
	client := &mqttClient{config: DefaultConfig()}

	err := client.Publish(context.Background(), "frigate/fox/report", "{}")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTPublish))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.DisconnectTimeout)
}

// fakeMQTT records the delivery sequence without a broker.
type fakeMQTT struct {
	connectErr   error
	publishErr   error
	connected    bool
	published    map[string]string
	disconnected bool
}

func (f *fakeMQTT) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeMQTT) Publish(ctx context.Context, topic, payload string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	if f.published == nil {
		f.published = make(map[string]string)
	}
	f.published[topic] = payload
	return nil
}

func (f *fakeMQTT) IsConnected() bool { return f.connected }

func (f *fakeMQTT) Disconnect() {
	f.connected = false
	f.disconnected = true
}

func TestPublishSummary(t *testing.T) {
	fake := &fakeMQTT{}
	summary := &Summary{Nights: 2, TotalEvents: 3, GeneratedAt: "2025-01-11T07:00:00Z"}

	require.NoError(t, PublishSummary(context.Background(), fake, "frigate/fox/report", summary))

	require.Contains(t, fake.published, "frigate/fox/report")
	assert.Contains(t, fake.published["frigate/fox/report"], `"total_events":3`)
	assert.True(t, fake.disconnected, "one-shot delivery should disconnect after publishing")
}

func TestPublishSummaryConnectFailure(t *testing.T) {
	fake := &fakeMQTT{connectErr: assert.AnError}

	err := PublishSummary(context.Background(), fake, "frigate/fox/report", &Summary{})
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, fake.published)
	assert.False(t, fake.disconnected, "a client that never connected has nothing to disconnect")
}

func TestPublishSummaryPublishFailure(t *testing.T) {
	fake := &fakeMQTT{publishErr: assert.AnError}

	err := PublishSummary(context.Background(), fake, "frigate/fox/report", &Summary{})
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, fake.disconnected, "the connection should be released even when publish fails")
}
