// internal/browser/stealth/stealth.go
package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/internal/config"
)

//go:embed evasions.js
var evasionsScript string

// Persona is the browser profile presented to the portal.
type Persona struct {
	UserAgent string
	Languages []string
	Timezone  string
	Locale    string
}

// FromConfig builds the persona from browser settings.
func FromConfig(cfg config.BrowserConfig) Persona {
	return Persona{
		UserAgent: strings.TrimSpace(cfg.UserAgent),
		Languages: cfg.Languages,
		Timezone:  strings.TrimSpace(cfg.Timezone),
		Locale:    strings.TrimSpace(cfg.Locale),
	}
}

// AcceptLanguage renders the Accept-Language header for the persona, or ""
// when no languages are set.
func (p Persona) AcceptLanguage() string {
	var parts []string
	for i, lang := range p.Languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		q := 1.0 - 0.1*float64(i)
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", lang, q))
	}
	return strings.Join(parts, ",")
}

// Apply returns the actions that install the persona on a tab. The evasions
// script runs before any page script on every navigation.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser persona.",
		zap.String("user_agent", p.UserAgent),
		zap.String("timezone", p.Timezone),
		zap.String("locale", p.Locale),
	)

	tasks := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),
	}
	if p.UserAgent != "" {
		ua := emulation.SetUserAgentOverride(p.UserAgent)
		if len(p.Languages) > 0 {
			ua = ua.WithAcceptLanguage(p.AcceptLanguage())
		}
		tasks = append(tasks, ua)
	}
	if p.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(p.Timezone))
	}
	if p.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(p.Locale))
	}
	if header := p.AcceptLanguage(); header != "" {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": header}))
	}
	return tasks
}
