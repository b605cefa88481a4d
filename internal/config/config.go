package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PHISHHUNTER_"

type Config struct {
	Resolver ResolverConfig      `yaml:"resolver"`
	TLS      TLSConfig           `yaml:"tls"`
	SSRF     SSRFConfig          `yaml:"ssrf"`
	Lists    map[string][]string `yaml:"lists"`
	Web      WebConfig           `yaml:"web"`
	Runner   RunnerConfig        `yaml:"runner"`
	Advice   AdviceConfig        `yaml:"advice"`
}

type ResolverConfig struct {
	MaxHops     int           `yaml:"max_hops"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	InsecureTLS bool          `yaml:"insecure_tls"`
}

type TLSConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type SSRFConfig struct {
	AllowCIDRs []string `yaml:"allow_cidrs"`
}

type WebConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	RateLimit    float64       `yaml:"rate_limit"`
	Burst        int           `yaml:"burst"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	AllowOrigin  string        `yaml:"allow_origin"`
}

type RunnerConfig struct {
	Threads   int `yaml:"threads"`
	RateLimit int `yaml:"rate_limit"`
}

type AdviceConfig struct {
	Do   []string `yaml:"do" json:"do"`
	Dont []string `yaml:"dont" json:"dont"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration from the embedded defaults, an optional YAML
// file, a .env file if present and PHISHHUNTER_* environment variables, in
// that order.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("USER_AGENT", &c.Resolver.UserAgent)
	str("LISTEN_ADDR", &c.Web.ListenAddr)
	str("ALLOW_ORIGIN", &c.Web.AllowOrigin)
	if v, ok := lookup(EnvPrefix + "ALLOW_CIDRS"); ok {
		c.SSRF.AllowCIDRs = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "INSECURE_TLS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sINSECURE_TLS: %w", EnvPrefix, err)
		}
		c.Resolver.InsecureTLS = b
	}
	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		c.Web.RateLimit = f
	}
	for _, err := range []error{
		num("MAX_HOPS", &c.Resolver.MaxHops),
		num("THREADS", &c.Runner.Threads),
		dur("TIMEOUT", &c.Resolver.Timeout),
		dur("TLS_TIMEOUT", &c.TLS.Timeout),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Resolver.MaxHops <= 0 {
		return errors.New("resolver.max_hops must be positive")
	}
	if c.Resolver.Timeout <= 0 {
		return errors.New("resolver.timeout must be positive")
	}
	if c.TLS.Timeout <= 0 {
		return errors.New("tls.timeout must be positive")
	}
	if c.Resolver.UserAgent == "" {
		return errors.New("resolver.user_agent must be set")
	}
	if c.Web.RateLimit < 0 || c.Runner.RateLimit < 0 {
		return errors.New("rate limits must not be negative")
	}
	if c.Runner.Threads <= 0 {
		c.Runner.Threads = 1
	}
	if c.Web.Burst <= 0 {
		c.Web.Burst = 1
	}
	if c.Web.MaxBodyBytes <= 0 {
		c.Web.MaxBodyBytes = 8 << 10
	}
	if c.Web.AllowOrigin == "" {
		c.Web.AllowOrigin = "*"
	}
	return nil
}
