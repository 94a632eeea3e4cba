// Package config resolves the dashboard server settings. Values are layered:
// built-in defaults, then the YAML file, then the environment (including a
// .env file), then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	insights "github.com/goliatone/go-workforce-insights"
	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/contract"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
)

// Environment variables read by Resolve.
const (
	EnvConfigFile    = "INSIGHTS_CONFIG"
	EnvAddr          = "INSIGHTS_ADDR"
	EnvShutdownGrace = "INSIGHTS_SHUTDOWN_GRACE"
	EnvSessionTTL    = "INSIGHTS_SESSION_TTL"
	EnvTemplatesDir  = "INSIGHTS_TEMPLATES_DIR"
	EnvService1URL   = "INSIGHTS_SERVICE1_URL"
	EnvService2URL   = "INSIGHTS_SERVICE2_URL"
	EnvService3URL   = "INSIGHTS_SERVICE3_URL"
	EnvClientTimeout = "INSIGHTS_CLIENT_TIMEOUT"
	EnvTheme         = "INSIGHTS_THEME"
	EnvThemeVariant  = "INSIGHTS_THEME_VARIANT"
	EnvContracts     = "INSIGHTS_CONTRACTS"
	EnvMaxSessions   = "INSIGHTS_MAX_SESSIONS"
	EnvValidate      = "INSIGHTS_CONTRACT_VALIDATION"
)

// DefaultEnvFile is loaded when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Services  ServicesConfig  `yaml:"services"`
	Client    ClientConfig    `yaml:"client"`
	Theme     ThemeConfig     `yaml:"theme"`
	Contracts ContractsConfig `yaml:"contracts"`
}

// ServerConfig controls the HTTP listener and session lifetime.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	MaxSessions   int           `yaml:"max_sessions"`
	TemplatesDir  string        `yaml:"templates_dir"`
}

// ServicesConfig holds the base URL of each prediction service.
type ServicesConfig struct {
	AttritionLogReg ServiceConfig `yaml:"attrition_logreg"`
	AttritionForest ServiceConfig `yaml:"attrition_forest"`
	Productivity    ServiceConfig `yaml:"productivity"`
}

// ServiceConfig describes one prediction service.
type ServiceConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ClientConfig tunes the outgoing HTTP client.
type ClientConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ThemeConfig selects the page theme.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// ContractsConfig replaces the bundled contract documents. Sources are file
// paths or http(s) URLs and must cover every bundled operation. Validate
// checks outgoing payloads against the service contracts and blocks
// requests that do not match; it is off unless enabled.
type ContractsConfig struct {
	Sources  []string `yaml:"sources"`
	Validate bool     `yaml:"validate"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":8080",
			ShutdownGrace: 5 * time.Second,
			SessionTTL:    30 * time.Minute,
			MaxSessions:   dashboard.DefaultMaxSessions,
		},
		Services: ServicesConfig{
			AttritionLogReg: ServiceConfig{BaseURL: client.DefaultLogisticRegressionURL},
			AttritionForest: ServiceConfig{BaseURL: client.DefaultRandomForestURL},
			Productivity:    ServiceConfig{BaseURL: client.DefaultProductivityURL},
		},
		Client: ClientConfig{Timeout: 30 * time.Second},
		Theme:  ThemeConfig{Name: "insights", Variant: "light"},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	if err := cfg.Decode(file); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML from r into c. Keys not present keep their value.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// EnvLookup resolves variables from the process environment first and from
// the .env file at path second. A missing file is ignored.
func EnvLookup(path string) (LookupFunc, error) {
	values := map[string]string{}
	if strings.TrimSpace(path) != "" {
		read, err := godotenv.Read(path)
		switch {
		case err == nil:
			values = read
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}, nil
}

// ApplyEnv overrides c with the INSIGHTS_* variables visible through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	strs := map[string]*string{
		EnvAddr:         &c.Server.Addr,
		EnvTemplatesDir: &c.Server.TemplatesDir,
		EnvService1URL:  &c.Services.AttritionLogReg.BaseURL,
		EnvService2URL:  &c.Services.AttritionForest.BaseURL,
		EnvService3URL:  &c.Services.Productivity.BaseURL,
		EnvTheme:        &c.Theme.Name,
		EnvThemeVariant: &c.Theme.Variant,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	durations := map[string]*time.Duration{
		EnvShutdownGrace: &c.Server.ShutdownGrace,
		EnvSessionTTL:    &c.Server.SessionTTL,
		EnvClientTimeout: &c.Client.Timeout,
	}
	if value, ok := lookup(EnvContracts); ok && strings.TrimSpace(value) != "" {
		c.Contracts.Sources = splitList(value)
	}

	if value, ok := lookup(EnvMaxSessions); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMaxSessions, err)
		}
		c.Server.MaxSessions = parsed
	}
	if value, ok := lookup(EnvValidate); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvValidate, err)
		}
		c.Contracts.Validate = parsed
	}

	for key, target := range durations {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.ShutdownGrace <= 0 {
		return errors.New("config: server.shutdown_grace must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("config: server.session_ttl must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New("config: server.max_sessions must be positive")
	}
	if c.Client.Timeout <= 0 {
		return errors.New("config: client.timeout must be positive")
	}
	for service, raw := range c.ServiceURLs() {
		if err := validateURL(raw); err != nil {
			return fmt.Errorf("config: %s base_url: %w", service, err)
		}
	}
	for _, raw := range c.Contracts.Sources {
		if strings.TrimSpace(raw) == "" {
			return errors.New("config: contracts.sources contains an empty entry")
		}
		if isURL(raw) {
			if err := validateURL(raw); err != nil {
				return fmt.Errorf("config: contract source: %w", err)
			}
		}
	}
	return nil
}

// ServiceURLs maps each prediction service to its configured base URL.
func (c Config) ServiceURLs() map[prediction.Service]string {
	return map[prediction.Service]string{
		prediction.ServiceLogisticRegression: c.Services.AttritionLogReg.BaseURL,
		prediction.ServiceRandomForest:       c.Services.AttritionForest.BaseURL,
		prediction.ServiceProductivity:       c.Services.Productivity.BaseURL,
	}
}

// ClientOptions returns the request adapter options matching c.
func (c Config) ClientOptions() []client.Option {
	options := []client.Option{client.WithTimeout(c.Client.Timeout)}
	for _, service := range prediction.Services() {
		options = append(options, client.WithBaseURL(service, c.ServiceURLs()[service]))
	}
	return options
}

// StoreOptions returns the session store options matching c.
func (c Config) StoreOptions() []dashboard.StoreOption {
	return []dashboard.StoreOption{
		dashboard.WithTTL(c.Server.SessionTTL),
		dashboard.WithMaxSessions(c.Server.MaxSessions),
	}
}

// DashboardOptions returns the per-session options matching c. Payloads are
// checked against set only when contract validation is enabled.
func (c Config) DashboardOptions(set *contract.Set) []dashboard.Option {
	if !c.Contracts.Validate || set == nil {
		return nil
	}
	return []dashboard.Option{dashboard.WithValidator(set)}
}

// ContractOptions points LoadContracts at the configured documents. Nil keeps
// the bundled ones. Remote documents are fetched with the client timeout.
func (c Config) ContractOptions() []insights.ContractOption {
	if len(c.Contracts.Sources) == 0 {
		return nil
	}
	sources := make([]contract.Source, 0, len(c.Contracts.Sources))
	remote := false
	for _, raw := range c.Contracts.Sources {
		raw = strings.TrimSpace(raw)
		if isURL(raw) {
			sources = append(sources, contract.SourceFromURL(raw))
			remote = true
			continue
		}
		sources = append(sources, contract.SourceFromFile(raw))
	}
	options := []insights.ContractOption{insights.WithContractSources(sources...)}
	if remote {
		options = append(options, insights.WithContractLoaderOptions(contract.WithHTTPFallback(c.Client.Timeout)))
	}
	return options
}

func isURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must be an absolute http(s) URL", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// Resolve builds the configuration from args and the environment. Flags
// override every other source but only when set explicitly.
func Resolve(name string, args []string, lookup LookupFunc) (Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		configPath    = flags.String("config", "", "YAML configuration file")
		envFile       = flags.String("env", DefaultEnvFile, "dotenv file with INSIGHTS_* overrides")
		addr          = flags.String("addr", "", "HTTP listen address")
		grace         = flags.Duration("grace", 0, "shutdown grace period")
		sessionTTL    = flags.Duration("session-ttl", 0, "idle session lifetime")
		maxSessions   = flags.Int("max-sessions", 0, "maximum number of live sessions")
		templatesDir  = flags.String("templates", "", "directory overriding the built-in templates")
		service1      = flags.String("service1", "", "logistic regression service base URL")
		service2      = flags.String("service2", "", "random forest service base URL")
		service3      = flags.String("service3", "", "productivity service base URL")
		clientTimeout = flags.Duration("timeout", 0, "prediction request timeout")
		themeName     = flags.String("theme", "", "theme name")
		themeVariant  = flags.String("variant", "", "theme variant")
		contracts     = flags.String("contracts", "", "comma-separated contract files or URLs replacing the bundled ones")
		validate      = flags.Bool("validate-contracts", false, "reject payloads that do not match the service contracts")
	)
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if lookup == nil {
		envLookup, err := EnvLookup(*envFile)
		if err != nil {
			return Config{}, err
		}
		lookup = envLookup
	}

	path := *configPath
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = *addr
		case "grace":
			cfg.Server.ShutdownGrace = *grace
		case "session-ttl":
			cfg.Server.SessionTTL = *sessionTTL
		case "max-sessions":
			cfg.Server.MaxSessions = *maxSessions
		case "templates":
			cfg.Server.TemplatesDir = *templatesDir
		case "service1":
			cfg.Services.AttritionLogReg.BaseURL = *service1
		case "service2":
			cfg.Services.AttritionForest.BaseURL = *service2
		case "service3":
			cfg.Services.Productivity.BaseURL = *service3
		case "timeout":
			cfg.Client.Timeout = *clientTimeout
		case "theme":
			cfg.Theme.Name = *themeName
		case "variant":
			cfg.Theme.Variant = *themeVariant
		case "contracts":
			cfg.Contracts.Sources = splitList(*contracts)
		case "validate-contracts":
			cfg.Contracts.Validate = *validate
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
