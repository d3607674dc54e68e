package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

type Config struct {
	Module       string   `hcl:"module,optional" env:"HOTSWAP_MODULE"`
	Recompile    []string `hcl:"recompile,optional" env:"HOTSWAP_RECOMPILE" envSeparator:" "`
	RecompileDir string   `hcl:"recompile_dir,optional" env:"HOTSWAP_RECOMPILE_DIR"`
	LogLevel     string   `hcl:"log_level,optional" env:"HOTSWAP_LOG_LEVEL"`
	LogFormat    string   `hcl:"log_format,optional" env:"HOTSWAP_LOG_FORMAT"`
	Journal      string   `hcl:"journal,optional" env:"HOTSWAP_JOURNAL"`
	OTelEndpoint string   `hcl:"otel_endpoint,optional" env:"HOTSWAP_OTEL_ENDPOINT"`
}

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load returns defaults overlaid with the HCL file at path (when not empty)
// and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile decodes an HCL file into cfg. Attributes absent from the file keep
// their current values. Expressions may read the environment through env.NAME.
func LoadFile(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	fileCfg := *cfg
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &fileCfg); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}
	*cfg = fileCfg
	return nil
}

func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Module == "" {
		errs = append(errs, errors.New("module path is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat))
	}
	return errors.Join(errs...)
}
