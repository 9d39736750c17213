// internal/platform/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/validator"
)

// KnownSources lists every bundled source name in display order.
var KnownSources = []string{
	"alienvault",
	"anubis",
	"bufferover",
	"censys",
	"certspotter",
	"chaos",
	"commoncrawl",
	"crtsh",
	"dnsdb",
	"dnsdumpster",
	"github",
	"hackertarget",
	"rapiddns",
	"riddler",
	"threatcrowd",
	"virustotal",
	"webarchive",
}

type Config struct {
	// App
	Domain       string
	Workers      int
	TimeoutS     int // per-source budget, seconds
	MaxTimeM     int // whole-run budget, minutes (0 = unbounded)
	Verbose      bool
	PrintVersion bool

	// Credentials
	KeysFile string

	// Proxy, as host:port or host:port:user:pass or a full URL
	ProxySpec string

	// Sources keyed by source name
	Sources map[string]ports.SourceConfig
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	sources := make(map[string]ports.SourceConfig, len(KnownSources))
	for _, name := range KnownSources {
		sources[name] = ports.DefaultSourceConfig()
	}

	return Config{
		Workers:  10,
		TimeoutS: 30,
		MaxTimeM: 10,
		Sources:  sources,
	}
}

// Load initializes configuration: defaults, then ENV, then flags (flags win).
// args is the command line without the program name.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	loadFromEnv(&cfg)

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)
	return cfg, cfg.validate()
}

func loadFromEnv(cfg *Config) {
	if v := getenv("SUBSWEEP_DOMAIN", ""); v != "" {
		cfg.Domain = v
	}
	if v := getenv("SUBSWEEP_THREADS", ""); v != "" {
		cfg.Workers = parseInt(v, cfg.Workers)
	}
	if v := getenv("SUBSWEEP_TIMEOUT", ""); v != "" {
		cfg.TimeoutS = parseInt(v, cfg.TimeoutS)
	}
	if v := getenv("SUBSWEEP_MAX_TIME", ""); v != "" {
		cfg.MaxTimeM = parseInt(v, cfg.MaxTimeM)
	}
	if v := getenv("SUBSWEEP_VERBOSE", ""); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := getenv("SUBSWEEP_KEYS_FILE", ""); v != "" {
		cfg.KeysFile = v
	}
	if v := getenv("SUBSWEEP_PROXY", ""); v != "" {
		cfg.ProxySpec = v
	}

	// Per-source overrides, e.g. SUBSWEEP_SOURCES_CRTSH_ENABLED=false
	for name := range cfg.Sources {
		prefix := fmt.Sprintf("SUBSWEEP_SOURCES_%s_", strings.ToUpper(name))

		sourceCfg := cfg.Sources[name]
		if v := getenv(prefix+"ENABLED", ""); v != "" {
			sourceCfg.Enabled = parseBool(v)
		}
		if v := getenv(prefix+"TIMEOUT", ""); v != "" {
			sourceCfg.Timeout = time.Duration(parseInt(v, int(sourceCfg.Timeout.Seconds()))) * time.Second
		}
		cfg.Sources[name] = sourceCfg
	}
}

func loadFromFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("subsweep", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.IntVarP(&cfg.Workers, "threads", "n", cfg.Workers, "maximum number of sources queried concurrently")
	fs.IntVarP(&cfg.TimeoutS, "timeout", "t", cfg.TimeoutS, "per-source timeout in seconds")
	fs.IntVarP(&cfg.MaxTimeM, "max-time", "m", cfg.MaxTimeM, "global time budget in minutes (0 = unlimited)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "print per-source progress and summary to stderr")
	fs.StringVarP(&cfg.KeysFile, "keys-file", "k", cfg.KeysFile, "path to the API keys file (YAML or JSON)")
	fs.StringVarP(&cfg.ProxySpec, "proxy", "p", cfg.ProxySpec, "HTTP proxy as host:port or host:port:user:pass")
	fs.BoolVar(&cfg.PrintVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: subsweep [flags] DOMAIN\n\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.ErrConfiguration, err.Error())
	}

	if fs.NArg() > 0 {
		cfg.Domain = fs.Arg(0)
	}
	return nil
}

func normalize(c *Config) {
	c.Domain = validator.NormalizeDomain(c.Domain)
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.TimeoutS < 1 {
		c.TimeoutS = 1
	}
	if c.MaxTimeM < 0 {
		c.MaxTimeM = 0
	}

	// Per-source timeouts default to the global -t value and never exceed
	// the run budget.
	for name, sc := range c.Sources {
		if sc.Timeout <= 0 {
			sc.Timeout = time.Duration(c.TimeoutS) * time.Second
		}
		if budget := c.MaxTime(); budget > 0 && sc.Timeout > budget {
			sc.Timeout = budget
		}
		c.Sources[name] = sc
	}
}

func (c Config) validate() error {
	if c.PrintVersion {
		return nil
	}
	if c.Domain == "" {
		return errors.Wrap(errors.ErrConfiguration, "target domain is required")
	}
	if c.ProxySpec != "" {
		if _, err := ParseProxySpec(c.ProxySpec); err != nil {
			return err
		}
	}
	return nil
}

// SourceTimeout returns the per-source budget as a duration.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.TimeoutS) * time.Second
}

// MaxTime returns the global budget as a duration. Zero means unbounded.
func (c Config) MaxTime() time.Duration {
	if c.MaxTimeM <= 0 {
		return 0
	}
	return time.Duration(c.MaxTimeM) * time.Minute
}

// ProxyURL parses the configured proxy spec, or returns nil when unset.
func (c Config) ProxyURL() (*url.URL, error) {
	if c.ProxySpec == "" {
		return nil, nil
	}
	return ParseProxySpec(c.ProxySpec)
}

// ParseProxySpec converts a proxy spec into a URL. Accepted forms:
//
//	host:port
//	host:port:user:pass
//	scheme://[user:pass@]host:port
func ParseProxySpec(spec string) (*url.URL, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.Wrap(errors.ErrConfiguration, "empty proxy spec")
	}

	if strings.Contains(spec, "://") {
		u, err := url.Parse(spec)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid proxy URL %q: %v", spec, err)
		}
		if u.Host == "" {
			return nil, errors.Wrapf(errors.ErrConfiguration, "proxy URL %q has no host", spec)
		}
		return u, nil
	}

	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 2:
		host, port := parts[0], parts[1]
		if host == "" || !isPort(port) {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid proxy spec %q, expected host:port", spec)
		}
		return url.Parse(fmt.Sprintf("http://%s:%s", host, port))
	case 4:
		host, port, user, pass := parts[0], parts[1], parts[2], parts[3]
		if host == "" || !isPort(port) || user == "" {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid proxy spec %q, expected host:port:user:pass", spec)
		}
		return &url.URL{
			Scheme: "http",
			Host:   fmt.Sprintf("%s:%s", host, port),
			User:   url.UserPassword(user, pass),
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrConfiguration, "invalid proxy spec %q", spec)
	}
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func isPort(v string) bool {
	p, err := strconv.Atoi(v)
	return err == nil && p > 0 && p <= 65535
}
