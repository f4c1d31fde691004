package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/routing"
)

//go:embed default.yaml
var defaultYAML []byte

const (
	defaultWorkDir      = ".build/swaggers"
	defaultOutputDir    = "references"
	defaultSearchDir    = ".build/search"
	defaultAPIDir       = "blockscout-api"
	defaultIndexFile    = "api-index.md"
	defaultIndexTitle   = "API Endpoints Index"
	defaultTimeoutMs    = 30000
	defaultAPIBase      = "https://api.github.com"
	defaultPerPage      = 10
	defaultSourceMethod = "GET"
)

// Environment variables read by applyEnvOverrides.
const (
	EnvWorkDir      = "SWAGINDEX_WORK_DIR"
	EnvOutputDir    = "SWAGINDEX_OUTPUT_DIR"
	EnvSearchDir    = "SWAGINDEX_SEARCH_DIR"
	EnvFetchTimeout = "SWAGINDEX_FETCH_TIMEOUT_MS"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

type DestinationConfig struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Preamble string   `yaml:"preamble"`
	Topic    bool     `yaml:"topic"`
	Section  string   `yaml:"section"`
	Sections []string `yaml:"sections"`
}

type TargetConfig struct {
	Destination string `yaml:"destination"`
	Heading     string `yaml:"heading"`
	Title       string `yaml:"title"`
	Preamble    string `yaml:"preamble"`
}

// PolicyConfig is one variant's routing entry. The embedded target is the
// fixed destination, or the split destination chosen when Marker matches.
type PolicyConfig struct {
	Variant string `yaml:"variant"`
	Kind    string `yaml:"kind"`

	TargetConfig `yaml:",inline"`

	Marker    string       `yaml:"marker"`
	Alternate TargetConfig `yaml:"alternate"`
}

type SourceConfig struct {
	Name            string   `yaml:"name"`
	Dir             string   `yaml:"dir"` // relative to work_dir
	Classify        bool     `yaml:"classify"`
	Destination     string   `yaml:"destination"`
	Section         string   `yaml:"section"`
	PathPrefix      string   `yaml:"path_prefix"`
	Methods         []string `yaml:"methods"`
	ExcludeSuffixes []string `yaml:"exclude_suffixes"`
	ExcludePaths    []string `yaml:"exclude_paths"`
}

// ReleaseConfig locates one service's releases and swagger documents.
// URLs may contain {version} and {variant} placeholders.
type ReleaseConfig struct {
	Source      string `yaml:"source"` // config source the documents belong to
	Repo        string `yaml:"repo"`
	TagPrefix   string `yaml:"tag_prefix"`
	PerPage     int    `yaml:"per_page"`
	VariantsURL string `yaml:"variants_url"`
	SwaggerURL  string `yaml:"swagger_url"`
}

type FetchConfig struct {
	TimeoutMs int           `yaml:"timeout_ms"`
	APIBase   string        `yaml:"api_base"`
	Main      ReleaseConfig `yaml:"main"`
	Stats     ReleaseConfig `yaml:"stats"`

	// Token is read from the environment only.
	Token string `yaml:"-"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

type Config struct {
	DefaultVariant string `yaml:"default_variant"`
	Suffix         string `yaml:"suffix"`

	WorkDir    string `yaml:"work_dir"`
	OutputDir  string `yaml:"output_dir"`
	SearchDir  string `yaml:"search_dir"`
	APIDir     string `yaml:"api_dir"`
	IndexFile  string `yaml:"index_file"`
	IndexTitle string `yaml:"index_title"`
	IndexIntro string `yaml:"index_intro"`

	Rules        []routing.Rule      `yaml:"rules"`
	Destinations []DestinationConfig `yaml:"destinations"`
	Policies     []PolicyConfig      `yaml:"policies"`
	Sources      []SourceConfig      `yaml:"sources"`
	Fetch        FetchConfig         `yaml:"fetch"`
}

// Default returns the embedded Blockscout configuration with defaults and
// environment overrides applied.
func Default() (*Config, error) {
	return Parse(defaultYAML)
}

// DefaultYAML returns a copy of the embedded configuration document.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Load reads a config file. An empty path loads the embedded default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Missing(path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, diag.Malformed(path, err)
	}
	return cfg, nil
}

// Parse validates data against the embedded schema and decodes it.
func Parse(data []byte) (*Config, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DefaultVariant) == "" {
		cfg.DefaultVariant = routing.DefaultVariant
	}
	if cfg.Suffix == "" {
		cfg.Suffix = routing.DefaultSuffix
	}
	if strings.TrimSpace(cfg.WorkDir) == "" {
		cfg.WorkDir = defaultWorkDir
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(cfg.SearchDir) == "" {
		cfg.SearchDir = defaultSearchDir
	}
	if strings.TrimSpace(cfg.APIDir) == "" {
		cfg.APIDir = defaultAPIDir
	}
	if strings.TrimSpace(cfg.IndexFile) == "" {
		cfg.IndexFile = defaultIndexFile
	}
	if strings.TrimSpace(cfg.IndexTitle) == "" {
		cfg.IndexTitle = defaultIndexTitle
	}
	for i := range cfg.Sources {
		if len(cfg.Sources[i].Methods) == 0 {
			cfg.Sources[i].Methods = []string{defaultSourceMethod}
		}
	}
	if cfg.Fetch.TimeoutMs <= 0 {
		cfg.Fetch.TimeoutMs = defaultTimeoutMs
	}
	if strings.TrimSpace(cfg.Fetch.APIBase) == "" {
		cfg.Fetch.APIBase = defaultAPIBase
	}
	cfg.Fetch.APIBase = strings.TrimRight(cfg.Fetch.APIBase, "/")
	if cfg.Fetch.Main.PerPage <= 0 {
		cfg.Fetch.Main.PerPage = defaultPerPage
	}
	if cfg.Fetch.Stats.PerPage <= 0 {
		cfg.Fetch.Stats.PerPage = defaultPerPage
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvWorkDir)); v != "" {
		cfg.WorkDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSearchDir)); v != "" {
		cfg.SearchDir = v
	}
	if n, ok := envInt(EnvFetchTimeout); ok && n > 0 {
		cfg.Fetch.TimeoutMs = n
	}
	cfg.Fetch.Token = strings.TrimSpace(os.Getenv(EnvGitHubToken))
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// validate checks cross-references the schema cannot express.
func validate(cfg *Config) error {
	seen := map[string]bool{}
	for _, d := range cfg.Destinations {
		if seen[d.ID] {
			return fmt.Errorf("duplicate destination %q", d.ID)
		}
		seen[d.ID] = true
	}
	for _, p := range cfg.Policies {
		kind, err := routing.ParsePolicyKind(p.Kind)
		if err != nil {
			return fmt.Errorf("policy %q: %w", p.Variant, err)
		}
		if kind == routing.PolicyFixed && p.Destination == "" {
			return fmt.Errorf("policy %q: fixed policy needs a destination", p.Variant)
		}
	}
	names := map[string]bool{}
	for _, s := range cfg.Sources {
		if names[s.Name] {
			return fmt.Errorf("duplicate source %q", s.Name)
		}
		names[s.Name] = true
		if !s.Classify && s.Destination == "" {
			return fmt.Errorf("source %q: needs classify or a destination", s.Name)
		}
	}
	for name, r := range map[string]ReleaseConfig{"main": cfg.Fetch.Main, "stats": cfg.Fetch.Stats} {
		if r.Source != "" && !names[r.Source] {
			return fmt.Errorf("fetch.%s: unknown source %q", name, r.Source)
		}
	}
	return nil
}

// Source returns the named source.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// SourceDir is the directory holding a source's swagger documents and map.
func (c *Config) SourceDir(s SourceConfig) string {
	return filepath.Join(c.WorkDir, s.Dir)
}

// APIPath is the directory destination files are written to.
func (c *Config) APIPath() string {
	return filepath.Join(c.OutputDir, c.APIDir)
}

// IndexPath is the master index file.
func (c *Config) IndexPath() string {
	return filepath.Join(c.OutputDir, c.IndexFile)
}

func (t TargetConfig) target() routing.Target {
	return routing.Target{
		Destination: t.Destination,
		Title:       t.Title,
		Heading:     t.Heading,
		Preamble:    t.Preamble,
	}
}

// RoutingDestinations converts destination entries for the classifier and router.
func (c *Config) RoutingDestinations() []routing.Destination {
	out := make([]routing.Destination, 0, len(c.Destinations))
	for _, d := range c.Destinations {
		out = append(out, routing.Destination{
			ID:       d.ID,
			Title:    d.Title,
			Preamble: d.Preamble,
			Topic:    d.Topic,
			Section:  d.Section,
			Sections: append([]string(nil), d.Sections...),
		})
	}
	return out
}

// ClassifierOptions builds the immutable classifier tables. Policy kinds were
// checked by validate, so parse errors cannot occur here.
func (c *Config) ClassifierOptions() routing.Options {
	policies := make([]routing.Policy, 0, len(c.Policies))
	for _, p := range c.Policies {
		kind, _ := routing.ParsePolicyKind(p.Kind)
		policies = append(policies, routing.Policy{
			Variant:   p.Variant,
			Kind:      kind,
			Target:    p.TargetConfig.target(),
			Marker:    p.Marker,
			Alternate: p.Alternate.target(),
		})
	}
	return routing.Options{
		DefaultVariant: c.DefaultVariant,
		Suffix:         c.Suffix,
		Rules:          append([]routing.Rule(nil), c.Rules...),
		Policies:       policies,
		Destinations:   c.RoutingDestinations(),
	}
}

// RoutingSource converts a source entry for the router.
func (s SourceConfig) RoutingSource() routing.Source {
	return routing.Source{
		Name:            s.Name,
		Classify:        s.Classify,
		Destination:     s.Destination,
		Section:         s.Section,
		PathPrefix:      s.PathPrefix,
		Methods:         append([]string(nil), s.Methods...),
		ExcludeSuffixes: append([]string(nil), s.ExcludeSuffixes...),
		ExcludePaths:    append([]string(nil), s.ExcludePaths...),
	}
}
