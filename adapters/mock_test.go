package adapters

import (
	"context"
	"time"
	"tuya-device-gateway/application"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/mock"
)

type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) IssueToken(ctx context.Context) (application.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(application.Credential), args.Error(1)
}

func (m *MockUpstream) Device(ctx context.Context, deviceID string, token string) (application.DeviceSnapshot, error) {
	args := m.Called(ctx, deviceID, token)
	return args.Get(0).(application.DeviceSnapshot), args.Error(1)
}

func (m *MockUpstream) Devices(ctx context.Context, deviceIDs []string, token string) (application.SnapshotBatch, error) {
	args := m.Called(ctx, deviceIDs, token)

	var batch application.SnapshotBatch
	if batchInt := args.Get(0); batchInt != nil {
		batch = batchInt.(application.SnapshotBatch)
	}
	return batch, args.Error(1)
}

var _ application.TuyaClient = &MockUpstream{}

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMQTTClient) IsConnectionOpen() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	args := m.Called()
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	args := m.Called(topic, qos, callback)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	args := m.Called(filters, callback)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Unsubscribe(topics ...string) mqtt.Token {
	args := m.Called(topics)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) AddRoute(topic string, callback mqtt.MessageHandler) {
	m.Called(topic, callback)
}

func (m *MockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	m.Called()
	return mqtt.ClientOptionsReader{}
}

var _ mqtt.Client = &MockMQTTClient{}

type MockToken struct {
	mock.Mock
}

func (m *MockToken) Wait() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockToken) WaitTimeout(d time.Duration) bool {
	args := m.Called(d)
	return args.Bool(0)
}

func (m *MockToken) Done() <-chan struct{} {
	args := m.Called()
	return args.Get(0).(chan struct{})
}

func (m *MockToken) Error() error {
	args := m.Called()
	return args.Error(0)
}

var _ mqtt.Token = &MockToken{}

type MockRedisConn struct {
	mock.Mock
}

func (m *MockRedisConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Err() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Do(commandName string, cmdArgs ...interface{}) (interface{}, error) {
	args := m.Called(append([]interface{}{commandName}, cmdArgs...)...)
	return args.Get(0), args.Error(1)
}

func (m *MockRedisConn) Send(commandName string, cmdArgs ...interface{}) error {
	args := m.Called(append([]interface{}{commandName}, cmdArgs...)...)
	return args.Error(0)
}

func (m *MockRedisConn) Flush() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Receive() (interface{}, error) {
	args := m.Called()
	return args.Get(0), args.Error(1)
}

var _ redis.Conn = &MockRedisConn{}
