// internal/browser/options.go
package browser

import (
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// flagSetting is one Chrome command line flag. A false value removes a flag
// set by the chromedp defaults.
type flagSetting struct {
	name  string
	value interface{}
}

// allocatorFlags lists the flags layered over chromedp's defaults. Automation
// markers are switched off so the portal sees an ordinary browser.
func allocatorFlags(cfg config.BrowserConfig, goos string) []flagSetting {
	flags := []flagSetting{
		{"enable-automation", false},
		{"disable-blink-features", "AutomationControlled"},
		{"disable-features", "IsolateOrigins,site-per-process"},
		{"disable-extensions", true},
		{"ignore-certificate-errors", cfg.IgnoreTLSErrors},
	}
	if cfg.Headless {
		flags = append(flags, flagSetting{"disable-gpu", true})
	} else {
		flags = append(flags,
			flagSetting{"headless", false},
			flagSetting{"hide-scrollbars", false},
			flagSetting{"mute-audio", false},
			flagSetting{"start-maximized", true},
		)
	}
	if cfg.DisableCache {
		flags = append(flags, flagSetting{"disk-cache-size", "1"}, flagSetting{"disable-application-cache", true})
	}

	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags = append(flags, flagSetting{name, parts[1]})
		} else {
			flags = append(flags, flagSetting{name, true})
		}
	}

	// Needed inside containers.
	if goos == "linux" {
		flags = append(flags, flagSetting{"no-sandbox", true}, flagSetting{"disable-dev-shm-usage", true})
	}
	return flags
}

// buildAllocatorOptions turns the browser configuration into allocator options.
func buildAllocatorOptions(cfg config.BrowserConfig, goos string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range allocatorFlags(cfg, goos) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		opts = append(opts, chromedp.WindowSize(w, h))
	}
	return opts
}

func defaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	return buildAllocatorOptions(cfg, runtime.GOOS)
}
