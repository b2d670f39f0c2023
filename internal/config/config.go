// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Portal() PortalConfig
	Credentials() CredentialsConfig
	Feedback() FeedbackConfig
	Form() FormConfig
	Markers() MarkerConfig
	Timing() TimingConfig
	Submission() SubmissionConfig
	Report() ReportConfig
	Metrics() MetricsConfig

	// Setters used by command line flags.
	SetBrowserHeadless(bool)
	SetPortalMode(string)
	SetReportFormat(string)
	SetReportOutput(string)
	SetMetricsTextfile(string)
}

// Config holds the entire application configuration. The exported fields are
// populated by viper; consumers go through the Interface getters.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	PortalCfg      PortalConfig      `mapstructure:"portal" yaml:"portal"`
	CredentialsCfg CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	FeedbackCfg    FeedbackConfig    `mapstructure:"feedback" yaml:"feedback"`
	FormCfg        FormConfig        `mapstructure:"form" yaml:"form"`
	MarkersCfg     MarkerConfig      `mapstructure:"markers" yaml:"markers"`
	TimingCfg      TimingConfig      `mapstructure:"timing" yaml:"timing"`
	SubmissionCfg  SubmissionConfig  `mapstructure:"submission" yaml:"submission"`
	ReportCfg      ReportConfig      `mapstructure:"report" yaml:"report"`
	MetricsCfg     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Portal() PortalConfig           { return c.PortalCfg }
func (c *Config) Credentials() CredentialsConfig { return c.CredentialsCfg }
func (c *Config) Feedback() FeedbackConfig       { return c.FeedbackCfg }
func (c *Config) Form() FormConfig               { return c.FormCfg }
func (c *Config) Markers() MarkerConfig          { return c.MarkersCfg }
func (c *Config) Timing() TimingConfig           { return c.TimingCfg }
func (c *Config) Submission() SubmissionConfig   { return c.SubmissionCfg }
func (c *Config) Report() ReportConfig           { return c.ReportCfg }
func (c *Config) Metrics() MetricsConfig         { return c.MetricsCfg }

func (c *Config) SetBrowserHeadless(b bool)   { c.BrowserCfg.Headless = b }
func (c *Config) SetPortalMode(m string)      { c.PortalCfg.Mode = m }
func (c *Config) SetReportFormat(f string)    { c.ReportCfg.Format = f }
func (c *Config) SetReportOutput(p string)    { c.ReportCfg.Output = p }
func (c *Config) SetMetricsTextfile(p string) { c.MetricsCfg.Textfile = p }

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal color names.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls the Chrome instance that drives the portal.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	Debug           bool           `mapstructure:"debug" yaml:"debug"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int `mapstructure:"viewport" yaml:"viewport"`
	// Persona overrides. Empty values leave the browser's own settings.
	UserAgent       string         `mapstructure:"user_agent" yaml:"user_agent"`
	Locale          string         `mapstructure:"locale" yaml:"locale"`
	Languages       []string       `mapstructure:"languages" yaml:"languages"`
	Timezone        string         `mapstructure:"timezone" yaml:"timezone"`
}

// PortalConfig locates the feedback portal.
type PortalConfig struct {
	// Mode is "production" for the live site or "local" for the static fixture.
	// An empty mode means local.
	Mode         string            `mapstructure:"mode" yaml:"mode"`
	BaseURL      string            `mapstructure:"base_url" yaml:"base_url"`
	Pages        map[string]string `mapstructure:"pages" yaml:"pages"`
	LocalFixture string            `mapstructure:"local_fixture" yaml:"local_fixture"`
}

// Page names understood by the portal navigator.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageFeedback  = "feedback"
	PageTheory    = "theory"
	PageLab       = "lab"
	PageMentor    = "mentor"
	PageTeaching  = "teaching"
)

const (
	ModeProduction = "production"
	ModeLocal      = "local"
)

// IsLocal reports whether the run targets the static fixture. Only an
// explicit non-local mode reaches the live portal.
func (p PortalConfig) IsLocal() bool {
	mode := strings.TrimSpace(p.Mode)
	return mode == "" || strings.EqualFold(mode, ModeLocal)
}

// ModeName returns the normalized mode name.
func (p PortalConfig) ModeName() string {
	if p.IsLocal() {
		return ModeLocal
	}
	return ModeProduction
}

// PageURL joins the base URL with the configured path for a page.
func (p PortalConfig) PageURL(name string) (string, error) {
	path, ok := p.Pages[name]
	if !ok || path == "" {
		return "", fmt.Errorf("portal.pages.%s is not configured", name)
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "file://") {
		return path, nil
	}
	return strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

// LoginURL is the first page a run opens.
func (p PortalConfig) LoginURL() (string, error) {
	if p.IsLocal() {
		fixture, err := homedir.Expand(p.LocalFixture)
		if err != nil {
			return "", fmt.Errorf("failed to expand portal.local_fixture: %w", err)
		}
		if strings.HasPrefix(fixture, "file://") {
			return fixture, nil
		}
		return "file://" + fixture, nil
	}
	return p.PageURL(PageLogin)
}

// CredentialsConfig holds the portal login.
type CredentialsConfig struct {
	EnrollmentNo string `mapstructure:"enrollment_no" yaml:"enrollment_no"`
	Password     string `mapstructure:"password" yaml:"-"`
}

// CategoryList pairs subjects with teachers by position.
type CategoryList struct {
	Subjects []string `mapstructure:"subjects" yaml:"subjects"`
	Teachers []string `mapstructure:"teachers" yaml:"teachers"`
}

// MentorConfig identifies the single mentor feedback form.
type MentorConfig struct {
	Department string `mapstructure:"department" yaml:"department"`
	Name       string `mapstructure:"name" yaml:"name"`
}

// FeedbackConfig describes what to submit.
type FeedbackConfig struct {
	// Option is the preferred rating value applied to every question.
	Option   string       `mapstructure:"option" yaml:"option"`
	Theory   CategoryList `mapstructure:"theory" yaml:"theory"`
	Lab      CategoryList `mapstructure:"lab" yaml:"lab"`
	Teaching CategoryList `mapstructure:"teaching" yaml:"teaching"`
	Mentor   MentorConfig `mapstructure:"mentor" yaml:"mentor"`
}

// FormConfig describes the portal markup the run depends on.
type FormConfig struct {
	SubjectSelector      string   `mapstructure:"subject_selector" yaml:"subject_selector"`
	TeacherSelector      string   `mapstructure:"teacher_selector" yaml:"teacher_selector"`
	DepartmentSelector   string   `mapstructure:"department_selector" yaml:"department_selector"`
	SubmitLocators       []string `mapstructure:"submit_locators" yaml:"submit_locators"`
	QuestionGroupMarkers []string `mapstructure:"question_group_markers" yaml:"question_group_markers"`
	ExcludedGroups       []string `mapstructure:"excluded_groups" yaml:"excluded_groups"`
	FeedbackLinkSelector string   `mapstructure:"feedback_link_selector" yaml:"feedback_link_selector"`
	DashboardSelector    string   `mapstructure:"dashboard_selector" yaml:"dashboard_selector"`
	FixtureSubjectSelect string   `mapstructure:"fixture_subject_selector" yaml:"fixture_subject_selector"`
	FixtureFeedbackLink  string   `mapstructure:"fixture_feedback_link" yaml:"fixture_feedback_link"`
}

// MarkerConfig holds the phrases used to classify dialog messages.
type MarkerConfig struct {
	Duplicate []string `mapstructure:"duplicate" yaml:"duplicate"`
	Success   []string `mapstructure:"success" yaml:"success"`
	Error     []string `mapstructure:"error" yaml:"error"`
}

// TimingConfig bounds every wait a run performs.
type TimingConfig struct {
	PageReady            time.Duration `mapstructure:"page_ready" yaml:"page_ready"`
	Navigation           time.Duration `mapstructure:"navigation" yaml:"navigation"`
	SelectSettle         time.Duration `mapstructure:"select_settle" yaml:"select_settle"`
	SentinelWindow       time.Duration `mapstructure:"sentinel_window" yaml:"sentinel_window"`
	SecondaryLookupDelay time.Duration `mapstructure:"secondary_lookup_delay" yaml:"secondary_lookup_delay"`
	DepartmentSettle     time.Duration `mapstructure:"department_settle" yaml:"department_settle"`
	FormScrollSettle     time.Duration `mapstructure:"form_scroll_settle" yaml:"form_scroll_settle"`
	ScrollSettle         time.Duration `mapstructure:"scroll_settle" yaml:"scroll_settle"`
	ClickSettle          time.Duration `mapstructure:"click_settle" yaml:"click_settle"`
	Confirmation         time.Duration `mapstructure:"confirmation" yaml:"confirmation"`
	NetworkIdle          time.Duration `mapstructure:"network_idle" yaml:"network_idle"`
	NetworkQuiet         time.Duration `mapstructure:"network_quiet" yaml:"network_quiet"`
	BetweenItems         time.Duration `mapstructure:"between_items" yaml:"between_items"`
	Linger               time.Duration `mapstructure:"linger" yaml:"linger"`
	TypeDelay            time.Duration `mapstructure:"type_delay" yaml:"type_delay"`
	LoginSettle          time.Duration `mapstructure:"login_settle" yaml:"login_settle"`
	LocalPageSettle      time.Duration `mapstructure:"local_page_settle" yaml:"local_page_settle"`
	LinkSettle           time.Duration `mapstructure:"link_settle" yaml:"link_settle"`
}

// SubmissionConfig selects how ambiguous confirmations are counted.
type SubmissionConfig struct {
	// UnconfirmedPolicy is "optimistic" or "strict".
	UnconfirmedPolicy string `mapstructure:"unconfirmed_policy" yaml:"unconfirmed_policy"`
}

// ReportConfig controls the end-of-run summary.
type ReportConfig struct {
	Format   string `mapstructure:"format" yaml:"format"`
	Output   string `mapstructure:"output" yaml:"output"`
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// legacyEnv maps configuration keys to the unprefixed variable names the
// portal's users already keep in their .env files.
var legacyEnv = map[string]string{
	"credentials.enrollment_no":  "ENROLLMENT_NO",
	"credentials.password":       "PASSWORD",
	"feedback.option":            "FEEDBACK_OPTION",
	"feedback.mentor.department": "MENTOR_DEPT",
	"feedback.mentor.name":       "MENTOR_NAME",
	"feedback.theory.subjects":   "THEORY_SUBJECTS",
	"feedback.theory.teachers":   "THEORY_TEACHERS",
	"feedback.lab.subjects":      "LAB_SUBJECTS",
	"feedback.lab.teachers":      "LAB_TEACHERS",
	"feedback.teaching.subjects": "TEACHING_SUBJECTS",
	"feedback.teaching.teachers": "TEACHING_TEACHERS",
	"portal.mode":                "ENVIRONMENT",
}

// BindLegacyEnv binds each key to both its prefixed name and its legacy name.
func BindLegacyEnv(v *viper.Viper, prefix string) error {
	for key, legacy := range legacyEnv {
		prefixed := strings.ToUpper(prefix + "_" + strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// NewDefaultConfig returns a Config populated only with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	cfg.normalize()
	return &cfg
}

// NewConfigFromViper unmarshals, normalizes and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg, err := LoadFromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromViper unmarshals and normalizes a configuration without validating
// it. Commands that never log in use it.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.FeedbackCfg.Option = strings.TrimSpace(c.FeedbackCfg.Option)
	for _, list := range []*CategoryList{&c.FeedbackCfg.Theory, &c.FeedbackCfg.Lab, &c.FeedbackCfg.Teaching} {
		list.Subjects = SplitList(list.Subjects)
		list.Teachers = SplitList(list.Teachers)
	}
	c.FeedbackCfg.Mentor.Department = strings.TrimSpace(c.FeedbackCfg.Mentor.Department)
	c.FeedbackCfg.Mentor.Name = strings.TrimSpace(c.FeedbackCfg.Mentor.Name)
	c.PortalCfg.Mode = c.PortalCfg.ModeName()
	c.ReportCfg.Format = strings.ToLower(strings.TrimSpace(c.ReportCfg.Format))
	c.SubmissionCfg.UnconfirmedPolicy = strings.ToLower(strings.TrimSpace(c.SubmissionCfg.UnconfirmedPolicy))
}

func (c *Config) expandPaths() error {
	paths := []*string{
		&c.LoggerCfg.LogFile,
		&c.PortalCfg.LocalFixture,
		&c.ReportCfg.Output,
		&c.MetricsCfg.Textfile,
		&c.BrowserCfg.ExecPath,
	}
	for _, p := range paths {
		if *p == "" || *p == "stdout" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// SplitList flattens comma separated entries, trims them and drops empties.
// It accepts both a single "a, b" string and a proper list.
func SplitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects configurations a run cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CredentialsCfg.EnrollmentNo) == "" {
		return fmt.Errorf("credentials.enrollment_no is required (ENROLLMENT_NO)")
	}
	if c.CredentialsCfg.Password == "" {
		return fmt.Errorf("credentials.password is required (PASSWORD)")
	}
	if c.FeedbackCfg.Option == "" {
		return fmt.Errorf("feedback.option is required (FEEDBACK_OPTION)")
	}
	if c.PortalCfg.IsLocal() && c.PortalCfg.LocalFixture == "" {
		return fmt.Errorf("portal.local_fixture is required in local mode")
	}
	if !c.PortalCfg.IsLocal() && c.PortalCfg.BaseURL == "" {
		return fmt.Errorf("portal.base_url is required in production mode")
	}
	if len(c.FormCfg.SubmitLocators) == 0 {
		return fmt.Errorf("form.submit_locators must list at least one locator")
	}
	if c.TimingCfg.Confirmation <= 0 {
		return fmt.Errorf("timing.confirmation must be a positive duration")
	}
	if c.TimingCfg.SentinelWindow <= 0 {
		return fmt.Errorf("timing.sentinel_window must be a positive duration")
	}
	switch c.ReportCfg.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("report.format must be one of text, json, yaml; got %q", c.ReportCfg.Format)
	}
	switch c.SubmissionCfg.UnconfirmedPolicy {
	case "optimistic", "strict":
	default:
		return fmt.Errorf("submission.unconfirmed_policy must be optimistic or strict; got %q", c.SubmissionCfg.UnconfirmedPolicy)
	}
	return nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "feedback-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.args", []string{"disable-web-security"})
	v.SetDefault("browser.viewport", map[string]int{"width": 1366, "height": 900})
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.locale", "en-IN")
	v.SetDefault("browser.languages", []string{"en-IN", "en"})
	v.SetDefault("browser.timezone", "Asia/Kolkata")

	// -- Portal --
	v.SetDefault("portal.mode", ModeLocal)
	v.SetDefault("portal.base_url", "https://sms.iul.ac.in/Student")
	v.SetDefault("portal.pages", map[string]string{
		PageLogin:     "login.aspx",
		PageDashboard: "index.aspx",
		PageFeedback:  "Feedback.aspx",
		PageTheory:    "FeedbackTheoryIQAC.aspx",
		PageLab:       "FeedbackLabIQAC.aspx",
		PageMentor:    "FeedbackMentorIQAC.aspx",
		PageTeaching:  "FeedbackTeaching.aspx",
	})
	v.SetDefault("portal.local_fixture", "./mock-portal/login.html")

	// -- Form --
	v.SetDefault("form.subject_selector", "#ContentPlaceHolder1_ddlSubject")
	v.SetDefault("form.teacher_selector", "#ContentPlaceHolder1_ddlTeacherCode")
	v.SetDefault("form.department_selector", "#ContentPlaceHolder1_ddldept")
	v.SetDefault("form.submit_locators", []string{
		"#ContentPlaceHolder1_btn_Submit",
		`input[type="submit"][value="Submit"]`,
		`input[id*="btn_Submit"]`,
		`input[name*="btn_Submit"]`,
		`input[type="submit"]`,
		`button[type="submit"]`,
	})
	v.SetDefault("form.question_group_markers", []string{"FeedbackGroup", "Questions"})
	v.SetDefault("form.excluded_groups", []string{"semester"})
	v.SetDefault("form.feedback_link_selector", `a[id*="lnk"]`)
	v.SetDefault("form.dashboard_selector", "#dashboardPage")
	v.SetDefault("form.fixture_subject_selector", "#theorySubject")
	v.SetDefault("form.fixture_feedback_link", ".link-button")

	// -- Markers --
	v.SetDefault("markers.duplicate", []string{"already submitted", "already given"})
	v.SetDefault("markers.success", []string{"success", "submitted"})
	v.SetDefault("markers.error", []string{"error", "failed"})

	// -- Timing --
	v.SetDefault("timing.page_ready", 5*time.Second)
	v.SetDefault("timing.navigation", 15*time.Second)
	v.SetDefault("timing.select_settle", time.Second)
	v.SetDefault("timing.sentinel_window", 1500*time.Millisecond)
	v.SetDefault("timing.secondary_lookup_delay", 500*time.Millisecond)
	v.SetDefault("timing.department_settle", 1500*time.Millisecond)
	v.SetDefault("timing.form_scroll_settle", 800*time.Millisecond)
	v.SetDefault("timing.scroll_settle", 1200*time.Millisecond)
	v.SetDefault("timing.click_settle", 800*time.Millisecond)
	v.SetDefault("timing.confirmation", 8*time.Second)
	v.SetDefault("timing.network_idle", 2*time.Second)
	v.SetDefault("timing.network_quiet", 500*time.Millisecond)
	v.SetDefault("timing.between_items", time.Second)
	v.SetDefault("timing.linger", 5*time.Second)
	v.SetDefault("timing.type_delay", 30*time.Millisecond)
	v.SetDefault("timing.login_settle", 800*time.Millisecond)
	v.SetDefault("timing.local_page_settle", 600*time.Millisecond)
	v.SetDefault("timing.link_settle", 1500*time.Millisecond)

	// -- Submission --
	v.SetDefault("submission.unconfirmed_policy", "optimistic")

	// -- Report --
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output", "stdout")
	v.SetDefault("report.timezone", "Asia/Kolkata")

	// -- Metrics --
	v.SetDefault("metrics.textfile", "")
}
