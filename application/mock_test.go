package application

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTuyaClient struct {
	mock.Mock
}

func (m *MockTuyaClient) IssueToken(ctx context.Context) (Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(Credential), args.Error(1)
}

func (m *MockTuyaClient) Device(ctx context.Context, deviceID string, token string) (DeviceSnapshot, error) {
	args := m.Called(ctx, deviceID, token)
	return args.Get(0).(DeviceSnapshot), args.Error(1)
}

func (m *MockTuyaClient) Devices(ctx context.Context, deviceIDs []string, token string) (SnapshotBatch, error) {
	args := m.Called(ctx, deviceIDs, token)

	var batch SnapshotBatch
	if batchInt := args.Get(0); batchInt != nil {
		batch = batchInt.(SnapshotBatch)
	}
	return batch, args.Error(1)
}

var _ TuyaClient = &MockTuyaClient{}

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	args := m.Called(topic, qos, retained, msg)
	return args.Error(0)
}

func (m *MockMQTTClient) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMQTTClient) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMQTTClient) Status() MQTTStatus {
	args := m.Called()
	return args.Get(0).(MQTTStatus)
}

var _ MQTTClient = &MockMQTTClient{}
