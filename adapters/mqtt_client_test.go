package adapters

import (
	"fmt"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedChannel() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func newTestMQTTClient(mClient *MockMQTTClient) *MQTTClient {
	return NewMQTTClient(MQTTClientParams{
		ClientID: "test",
		Username: "admin",
		Password: "password",
		MQTTUrl:  "tcp://localhost:1883",
		// for testing
		NewClientFunc: func(options *mqtt.ClientOptions) mqtt.Client {
			return mClient
		},
	})
}

func TestMQTTClient_Connect(t *testing.T) {
	mClient := &MockMQTTClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient)

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(closedChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)
	assert.True(t, mqttClient.IsConnected())

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.Equal(t, time.Unix(0, 0), status.LastTimePublished)
	assert.True(t, status.Connected)

	// already connected, no second broker call
	err = mqttClient.Connect()
	require.NoError(t, err)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Connect_Error(t *testing.T) {
	mClient := &MockMQTTClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient)

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(closedChannel()).Once()
	mToken.On("Error").Return(fmt.Errorf("internal")).Twice()

	err := mqttClient.Connect()
	require.Error(t, err)
	assert.False(t, mqttClient.IsConnected())

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_OnConnectionLost(t *testing.T) {
	mClient := &MockMQTTClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient)

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(closedChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)
	assert.True(t, mqttClient.IsConnected())

	mqttClient.OnConnectionLost(mClient, fmt.Errorf("connection lost"))
	assert.False(t, mqttClient.IsConnected())

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Publish(t *testing.T) {
	mClient := &MockMQTTClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient)

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(closedChannel()).Twice()
	mToken.On("Error").Return(nil).Twice()

	err := mqttClient.Connect()
	require.NoError(t, err)

	topic := "tuya-devices/changes"
	payload := []byte(`{"changes":{}}`)

	mClient.On("Publish", topic, byte(0), false, payload).Return(mToken).Once()

	err = mqttClient.Publish(topic, 0, false, payload)
	require.NoError(t, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(1), status.MessageCount)
	assert.True(t, time.Now().After(status.LastTimePublished) || time.Now().Equal(status.LastTimePublished))
	assert.True(t, status.Connected)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Publish_NotConnected(t *testing.T) {
	mClient := &MockMQTTClient{}

	mqttClient := newTestMQTTClient(mClient)

	err := mqttClient.Publish("tuya-devices/changes", 0, false, []byte("{}"))
	require.Error(t, err)
	require.Equal(t, ErrMQTTNotConnected, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.False(t, status.Connected)

	mClient.AssertExpectations(t)
}

func TestMQTTClient_Publish_Error(t *testing.T) {
	mClient := &MockMQTTClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient)

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(closedChannel()).Twice()
	mToken.On("Error").Return(nil).Once()
	mToken.On("Error").Return(fmt.Errorf("internal")).Twice()

	err := mqttClient.Connect()
	require.NoError(t, err)

	topic := "tuya-devices/changes"
	payload := []byte("{}")

	mClient.On("Publish", topic, byte(0), false, payload).Return(mToken).Once()

	err = mqttClient.Publish(topic, 0, false, payload)
	require.Error(t, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.True(t, status.Connected)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}
