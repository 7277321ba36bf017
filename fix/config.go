package fix

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gnolang/errfix/internal"
	"github.com/gnolang/errfix/internal/rules"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no configuration file is named explicitly.
const DefaultConfigPath = ".errfix.yaml"

// Config is the content of an .errfix.yaml (or .toml) file.
type Config struct {
	Name      string       `yaml:"name" toml:"name"`
	Root      string       `yaml:"root,omitempty" toml:"root,omitempty"`
	Extension string       `yaml:"extension" toml:"extension"`
	Ignore    []string     `yaml:"ignore" toml:"ignore"`
	Disable   []string     `yaml:"disable,omitempty" toml:"disable,omitempty"`
	Rules     []RuleConfig `yaml:"rules,omitempty" toml:"rules,omitempty"`
	Cache     bool         `yaml:"cache" toml:"cache"`

	// dir is the directory holding the file the config was read from.
	dir string
}

// RuleConfig declares a rule appended after the built-in catalog.
type RuleConfig struct {
	Name     string   `yaml:"name" toml:"name"`
	Callees  []string `yaml:"callees" toml:"callees"`
	Results  int      `yaml:"results,omitempty" toml:"results,omitempty"`
	Deferred bool     `yaml:"deferred,omitempty" toml:"deferred,omitempty"`
	Form     string   `yaml:"form,omitempty" toml:"form,omitempty"`
	Comment  string   `yaml:"comment,omitempty" toml:"comment,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name:      "errfix",
		Extension: ".go",
		Ignore:    append([]string(nil), internal.DefaultIgnore...),
	}
}

// LoadConfig reads the configuration at path. The format follows the file
// extension: .toml files are TOML, anything else is YAML. A missing file
// yields the defaults unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return config, nil
	}
	if err != nil {
		return config, err
	}

	if isTOML(path) {
		meta, err := toml.Decode(string(data), &config)
		if err != nil {
			return config, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return config, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return config, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return config, err
	}
	config.dir = filepath.Dir(abs)
	return config, nil
}

// WriteConfig stores config at path in the format its extension selects.
func WriteConfig(path string, config Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(config)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Catalog builds the rule catalog the configuration describes: the built-in
// rules minus the disabled ones, followed by the configured extras.
func (c Config) Catalog() (rules.Catalog, error) {
	catalog := rules.DefaultCatalog()
	for _, name := range c.Disable {
		if catalog.Lookup(name) == nil {
			return nil, fmt.Errorf("cannot disable unknown rule %q", name)
		}
	}
	catalog = catalog.Without(c.Disable...)

	extra := make([]*rules.Rule, 0, len(c.Rules))
	for _, rc := range c.Rules {
		form, err := rules.ParseForm(rc.Form)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		extra = append(extra, &rules.Rule{
			Name:     rc.Name,
			Callees:  rc.Callees,
			Results:  rc.Results,
			Deferred: rc.Deferred,
			Form:     form,
			Comment:  rc.Comment,
		})
	}
	return catalog.Append(extra...)
}

// ResolveRoot picks the directory to fix: the explicit value if given, then
// the configured root (relative to the configuration file), then the
// current directory. The result is absolute and must exist.
func (c Config) ResolveRoot(explicit string) (string, error) {
	root := explicit
	if root == "" && c.Root != "" {
		root = c.Root
		if !filepath.IsAbs(root) && c.dir != "" {
			root = filepath.Join(c.dir, root)
		}
	}
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("error accessing root: %w", err)
	}
	return abs, nil
}
