// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Portal() config.PortalConfig {
	args := m.Called()
	return args.Get(0).(config.PortalConfig)
}

func (m *MockConfig) Credentials() config.CredentialsConfig {
	args := m.Called()
	return args.Get(0).(config.CredentialsConfig)
}

func (m *MockConfig) Feedback() config.FeedbackConfig {
	args := m.Called()
	return args.Get(0).(config.FeedbackConfig)
}

func (m *MockConfig) Form() config.FormConfig {
	args := m.Called()
	return args.Get(0).(config.FormConfig)
}

func (m *MockConfig) Markers() config.MarkerConfig {
	args := m.Called()
	return args.Get(0).(config.MarkerConfig)
}

func (m *MockConfig) Timing() config.TimingConfig {
	args := m.Called()
	return args.Get(0).(config.TimingConfig)
}

func (m *MockConfig) Submission() config.SubmissionConfig {
	args := m.Called()
	return args.Get(0).(config.SubmissionConfig)
}

func (m *MockConfig) Report() config.ReportConfig {
	args := m.Called()
	return args.Get(0).(config.ReportConfig)
}

func (m *MockConfig) Metrics() config.MetricsConfig {
	args := m.Called()
	return args.Get(0).(config.MetricsConfig)
}

// --- Setters ---

func (m *MockConfig) SetBrowserHeadless(b bool) {
	m.Called(b)
}

func (m *MockConfig) SetPortalMode(mode string) {
	m.Called(mode)
}

func (m *MockConfig) SetReportFormat(f string) {
	m.Called(f)
}

func (m *MockConfig) SetReportOutput(p string) {
	m.Called(p)
}

func (m *MockConfig) SetMetricsTextfile(p string) {
	m.Called(p)
}

// -- Browser Mocks --

// MockPage mocks schemas.Page. Evaluate results are written through a Run
// hook on the expectation; OnDialog stores the handler so tests can raise
// dialogs with Raise.
type MockPage struct {
	mock.Mock

	handlers []schemas.DialogHandler
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPage) WaitVisible(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) Click(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) SelectOption(ctx context.Context, selector, value string) error {
	args := m.Called(ctx, selector, value)
	return args.Error(0)
}

func (m *MockPage) Type(ctx context.Context, selector, text string) error {
	args := m.Called(ctx, selector, text)
	return args.Error(0)
}

func (m *MockPage) Evaluate(ctx context.Context, expression string, res interface{}) error {
	args := m.Called(ctx, expression, res)
	return args.Error(0)
}

func (m *MockPage) WaitNetworkIdle(ctx context.Context, quiet time.Duration) error {
	args := m.Called(ctx, quiet)
	return args.Error(0)
}

func (m *MockPage) OnDialog(handler schemas.DialogHandler) func() {
	m.Called(handler)
	m.handlers = append(m.handlers, handler)
	idx := len(m.handlers) - 1
	return func() { m.handlers[idx] = nil }
}

// Raise delivers d to the newest live handler and reports whether one existed.
func (m *MockPage) Raise(d schemas.Dialog) bool {
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if h := m.handlers[i]; h != nil {
			h(d)
			return true
		}
	}
	return false
}

// MockDialog mocks schemas.Dialog.
type MockDialog struct {
	mock.Mock
}

func (m *MockDialog) Message() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDialog) Accept() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDialog) Dismiss() error {
	args := m.Called()
	return args.Error(0)
}

// -- Portal Mocks --

// MockNavigator mocks the page navigator used by submission flows.
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) GoTo(ctx context.Context, page string) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}
