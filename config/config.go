// Package config loads the project configuration of mew: where the sources are,
// where the HTML goes, and how documents are rendered.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/hesusruiz/mew/mew"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrFrontMatter     = errors.New("malformed front matter")
)

// MaxParentDirs is how many parent directories Discover climbs before giving up
const MaxParentDirs = 5

// FileNames are the names of a project config file, in order of preference
var FileNames = []string{"mew.yaml", "mew.yml", "mew.toml"}

// userConfigFile is searched in the XDG config directories when no project file exists
var userConfigFile = filepath.Join("mew", "config.yaml")

// Config holds the settings of a project.
type Config struct {
	Encoding  string            `yaml:"encoding" toml:"encoding"`   // Encoding of the source files
	Entry     string            `yaml:"entry" toml:"entry"`         // Source file or directory
	Output    string            `yaml:"output" toml:"output"`       // Output directory
	Pretty    bool              `yaml:"pretty" toml:"pretty"`       // Re-indent the generated HTML
	Indent    int               `yaml:"indent" toml:"indent"`       // Spaces per level when Pretty is set
	Strict    bool              `yaml:"strict" toml:"strict"`       // Fail on placeholders of unset variables
	Variables map[string]string `yaml:"variables" toml:"variables"` // Initial variables of every document
	Presets   []Preset          `yaml:"presets" toml:"presets"`

	// Path is the file the config was loaded from, empty for the defaults
	Path string `yaml:"-" toml:"-"`
}

// Preset declares a user preset.
// The content of the block can go to an attribute (ContentAttr), replace a
// placeholder in an attribute (Replace) or stay as content (KeepContent).
type Preset struct {
	Tag            string   `yaml:"tag" toml:"tag"`
	Element        Element  `yaml:"element" toml:"element"`
	ContentAttr    string   `yaml:"content_attr" toml:"content_attr"`
	Replace        *Replace `yaml:"replace" toml:"replace"`
	KeepContent    bool     `yaml:"keep_content" toml:"keep_content"`
	KeepAttributes bool     `yaml:"keep_attributes" toml:"keep_attributes"`
	KeepChildren   bool     `yaml:"keep_children" toml:"keep_children"`
}

// Element is the template of a preset.
// Attribute values may be a string, a list of strings or null for a bare attribute.
type Element struct {
	Tag        string         `yaml:"tag" toml:"tag"`
	Attributes map[string]any `yaml:"attributes" toml:"attributes"`
	Content    string         `yaml:"content" toml:"content"`
}

// Replace names the attribute and the text replaced by the content of the block
type Replace struct {
	Attr   string `yaml:"attr" toml:"attr"`
	Search string `yaml:"search" toml:"search"`
}

// Default returns the configuration used when there is no config file.
func Default() *Config {
	return &Config{
		Encoding:  "utf-8",
		Entry:     "./src",
		Output:    "./dist",
		Indent:    4,
		Variables: map[string]string{},
	}
}

// Load reads a YAML or TOML config file and merges it over the defaults.
// Relative paths in the file are relative to the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Path = path
	dir := filepath.Dir(path)
	cfg.Entry = resolvePath(dir, cfg.Entry)
	cfg.Output = resolvePath(dir, cfg.Output)

	return cfg, nil
}

func resolvePath(dir, p string) string {
	if len(p) == 0 || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Discover looks for a project config file in startDir and up to MaxParentDirs
// of its parents, and then for mew/config.yaml in the XDG config directories.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	var tried []string
	for i := 0; i <= MaxParentDirs; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}
		tried = append(tried, dir)

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if p, err := xdg.SearchConfigFile(userConfigFile); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("%w: tried %s and the user config directories", ErrConfigNotFound, strings.Join(tried, ", "))
}

// Resolve returns the configuration to use: the file given explicitly, or the one found
// by Discover, or the defaults when there is no config file at all.
func Resolve(explicit, startDir string, log *zap.SugaredLogger) (*Config, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if len(explicit) > 0 {
		return Load(explicit)
	}

	path, err := Discover(startDir)
	if errors.Is(err, ErrConfigNotFound) {
		log.Debugw("no config file found, using defaults", "start", startDir)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	log.Debugw("using config file", "path", path)
	return Load(path)
}

// Validate checks the values that can not be checked by the decoders
func (c *Config) Validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent must not be negative, got %d", ErrConfigParse, c.Indent)
	}
	if _, err := encodingFor(c.Encoding); err != nil {
		return err
	}
	for i, p := range c.Presets {
		if len(p.Tag) == 0 {
			return fmt.Errorf("%w: preset %d has no tag", ErrConfigParse, i)
		}
	}
	return nil
}

// PresetSpecs compiles the declared presets, in declaration order
func (c *Config) PresetSpecs() ([]mew.PresetSpec, error) {
	specs := make([]mew.PresetSpec, 0, len(c.Presets))
	for _, p := range c.Presets {
		s, err := p.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Options returns the converter options for this configuration
func (c *Config) Options(log *zap.SugaredLogger) ([]mew.Option, error) {
	specs, err := c.PresetSpecs()
	if err != nil {
		return nil, err
	}
	return []mew.Option{
		mew.WithLogger(log),
		mew.WithVariables(c.Variables),
		mew.WithPresets(specs...),
		mew.WithStrictVariables(c.Strict),
	}, nil
}

// Spec converts the declaration into a preset for the converter
func (p Preset) Spec() (mew.PresetSpec, error) {
	attrs, err := p.Element.attributes()
	if err != nil {
		return mew.PresetSpec{}, fmt.Errorf("%w: preset %q: %v", ErrConfigParse, p.Tag, err)
	}

	rw := mew.Rewrite{
		KeepAttributes: p.KeepAttributes,
		KeepContent:    p.KeepContent,
		KeepChildren:   p.KeepChildren,
		ContentAttr:    p.ContentAttr,
	}
	if p.Replace != nil {
		rw.ReplaceAttr = p.Replace.Attr
		rw.ReplaceSearch = p.Replace.Search
	}

	return mew.PresetSpec{
		Tag: p.Tag,
		Element: mew.ElementSpec{
			Tag:        p.Element.Tag,
			Attributes: attrs,
			Content:    p.Element.Content,
		},
		Transform: rw.Transform(),
	}, nil
}

// attributes converts the attribute map, in sorted name order
func (e Element) attributes() (mew.Attributes, error) {
	names := make([]string, 0, len(e.Attributes))
	for name := range e.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	var attrs mew.Attributes
	for _, name := range names {
		switch v := e.Attributes[name].(type) {
		case nil:
			attrs.SetValueless(name)
		case bool:
			// TOML has no null, so 'true' also means a bare attribute
			if v {
				attrs.SetValueless(name)
			}
		case string:
			attrs.Set(name, v)
		case []any:
			values := make([]string, 0, len(v))
			for _, item := range v {
				switch item.(type) {
				case map[string]any, []any, nil:
					return nil, fmt.Errorf("attribute %q: list items must be scalars", name)
				}
				values = append(values, fmt.Sprint(item))
			}
			attrs.Set(name, values...)
		case map[string]any:
			return nil, fmt.Errorf("attribute %q: a value can not be a map", name)
		default:
			attrs.Set(name, fmt.Sprint(v))
		}
	}
	return attrs, nil
}
