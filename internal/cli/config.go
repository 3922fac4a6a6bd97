package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is probed in the working directory when no --config
// flag is given.
const DefaultConfigFile = "graft.yaml"

// Config is the CLI configuration.
type Config struct {
	// Store is the store directory: it holds the SQLite database and the
	// blob store.
	Store string `yaml:"store"`
}

// configSchema constrains the decoded YAML before it is trusted. The
// definition is closed, so unknown keys are rejected rather than silently
// ignored (a typoed key pointing a command at the wrong store is worse
// than an error).
const configSchema = `
#Config: {
	store: string & != ""
}
`

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Decode generically first so CUE sees exactly what the file says.
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("%s: parsing config: %w", path, err)
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal: config schema: %w", err)
	}
	unified := schema.Unify(cctx.Encode(tree))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: parsing config: %w", path, err)
	}
	return &cfg, nil
}

// resolveStore picks the store directory: the --db flag wins, then the
// config file named by --config, then ./graft.yaml if it exists.
func resolveStore(opts *RootOptions) (string, error) {
	if opts.Store != "" {
		return opts.Store, nil
	}

	path := opts.Config
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return "", errors.New("no store configured: pass --db, --config, or create graft.yaml")
		}
		path = DefaultConfigFile
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return "", err
	}
	return cfg.Store, nil
}
