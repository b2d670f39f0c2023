// internal/browser/options_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// flagValue returns the last value set for name, mirroring how the allocator
// resolves repeated flags.
func flagValue(t *testing.T, flags []flagSetting, name string) (interface{}, bool) {
	t.Helper()
	var (
		value interface{}
		found bool
	)
	for _, f := range flags {
		if f.name == name {
			value, found = f.value, true
		}
	}
	return value, found
}

func TestAllocatorFlags(t *testing.T) {
	t.Run("headless with linux sandbox flags", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{Headless: true}, "linux")

		v, ok := flagValue(t, flags, "enable-automation")
		assert.True(t, ok)
		assert.Equal(t, false, v)

		v, _ = flagValue(t, flags, "disable-gpu")
		assert.Equal(t, true, v)
		v, _ = flagValue(t, flags, "no-sandbox")
		assert.Equal(t, true, v)
		v, _ = flagValue(t, flags, "disable-dev-shm-usage")
		assert.Equal(t, true, v)

		_, ok = flagValue(t, flags, "start-maximized")
		assert.False(t, ok)
	})

	t.Run("headed window", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{Headless: false}, "darwin")

		v, ok := flagValue(t, flags, "headless")
		assert.True(t, ok)
		assert.Equal(t, false, v)
		v, _ = flagValue(t, flags, "start-maximized")
		assert.Equal(t, true, v)

		_, ok = flagValue(t, flags, "no-sandbox")
		assert.False(t, ok, "sandbox flags are linux only")
	})

	t.Run("cache and TLS", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{DisableCache: true, IgnoreTLSErrors: true}, "linux")

		v, _ := flagValue(t, flags, "disk-cache-size")
		assert.Equal(t, "1", v)
		v, _ = flagValue(t, flags, "ignore-certificate-errors")
		assert.Equal(t, true, v)
	})

	t.Run("custom args", func(t *testing.T) {
		cfg := config.BrowserConfig{Args: []string{"disable-web-security", "--lang=en-IN", "", "--"}}
		flags := allocatorFlags(cfg, "linux")

		v, _ := flagValue(t, flags, "disable-web-security")
		assert.Equal(t, true, v)
		v, _ = flagValue(t, flags, "lang")
		assert.Equal(t, "en-IN", v)
		_, ok := flagValue(t, flags, "")
		assert.False(t, ok)
	})
}

func TestBuildAllocatorOptions(t *testing.T) {
	base := len(buildAllocatorOptions(config.BrowserConfig{Headless: true}, "linux"))

	withExtras := buildAllocatorOptions(config.BrowserConfig{
		Headless: true,
		ExecPath: "/usr/bin/chromium",
		Viewport: map[string]int{"width": 1366, "height": 900},
	}, "linux")
	assert.Equal(t, base+2, len(withExtras), "exec path and window size add one option each")

	partialViewport := buildAllocatorOptions(config.BrowserConfig{
		Headless: true,
		Viewport: map[string]int{"width": 1366},
	}, "linux")
	assert.Equal(t, base, len(partialViewport))
}
