package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

type MockPresentationParser struct {
	mock.Mock
}

func (m *MockPresentationParser) Parse(ctx context.Context, content []byte) (*ports.ParseResult, error) {
	args := m.Called(ctx, content)
	if r := args.Get(0); r != nil {
		return r.(*ports.ParseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

type MockHTTPServer struct {
	mock.Mock
}

func (m *MockHTTPServer) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHTTPServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHTTPServer) SetPresentation(result *ports.ParseResult) {
	m.Called(result)
}

func (m *MockHTTPServer) NotifyClients(event ports.UpdateEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockHTTPServer) IsRunning() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockPresentationService struct {
	mock.Mock
}

func (m *MockPresentationService) LoadPresentation(ctx context.Context, path string) (*ports.ParseResult, error) {
	args := m.Called(ctx, path)
	if r := args.Get(0); r != nil {
		return r.(*ports.ParseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresentationService) ParsePresentation(ctx context.Context, content []byte) (*ports.ParseResult, error) {
	args := m.Called(ctx, content)
	if r := args.Get(0); r != nil {
		return r.(*ports.ParseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) WriteDefaults(ctx context.Context, path string, overwrite bool) error {
	args := m.Called(ctx, path, overwrite)
	return args.Error(0)
}

func (m *MockConfigLoader) Path(scope ports.ConfigScope, dir string) string {
	args := m.Called(scope, dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

type MockPreviewMetrics struct {
	mock.Mock
}

func (m *MockPreviewMetrics) RecordRequest(status int) {
	m.Called(status)
}

func (m *MockPreviewMetrics) RecordConnection() {
	m.Called()
}

func (m *MockPreviewMetrics) RecordReload(duration time.Duration, err error) {
	m.Called(duration, err)
}

func (m *MockPreviewMetrics) HealthStatus() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}
