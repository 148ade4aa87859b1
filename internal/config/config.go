package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/pageflow/pkg/api"
)

// FileName is the configuration file looked up next to the input document
const FileName = "pageflow.yaml"

// Config represents the pageflow configuration file
type Config struct {
	Title      string           `yaml:"title"`
	Author     string           `yaml:"author"`
	Page       PageConfig       `yaml:"page"`
	Pagination PaginationConfig `yaml:"pagination"`
	Layout     LayoutConfig     `yaml:"layout"`
	Debug      bool             `yaml:"debug"`
	// Directories searched for imported documents
	ResourcePaths []string `yaml:"resource_paths,omitempty"`
}

// PageConfig describes the page geometry in CSS pixels
type PageConfig struct {
	Size        string  `yaml:"size"`        // "A4", "A5", "A3", "Letter", "Legal"
	Orientation string  `yaml:"orientation"` // "portrait" or "landscape"
	Width       float64 `yaml:"width,omitempty"`
	Height      float64 `yaml:"height,omitempty"`
	Margins     Margins `yaml:"margins"`
}

// Margins in CSS pixels
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// PaginationConfig tunes the overflow resolver
type PaginationConfig struct {
	ContentMaxHeight float64 `yaml:"content_max_height"`
	Tolerance        float64 `yaml:"tolerance"`
	MinSplitLength   int     `yaml:"min_split_length"`
	SplitRatio       float64 `yaml:"split_ratio"`
	MaxDepth         int     `yaml:"max_depth"`
	NewPageDelay     string  `yaml:"new_page_delay,omitempty"` // e.g. "30ms". Default: 30ms
	CascadeDelay     string  `yaml:"cascade_delay,omitempty"`  // Default: 0
}

// LayoutConfig sets the root font of unstyled content
type LayoutConfig struct {
	FontSize   float64 `yaml:"font_size"`
	FontFamily string  `yaml:"font_family"`
	LineHeight string  `yaml:"line_height"`
	// Stylesheet is a CSS file applied to every page, relative to the config file
	Stylesheet string `yaml:"stylesheet,omitempty"`

	stylesheet string
}

// GetNewPageDelay returns the parsed new-page delay (default: 30ms)
func (c PaginationConfig) GetNewPageDelay() time.Duration {
	return parseDuration(c.NewPageDelay, 30*time.Millisecond)
}

// GetCascadeDelay returns the parsed cascade delay (default: 0)
func (c PaginationConfig) GetCascadeDelay() time.Duration {
	return parseDuration(c.CascadeDelay, 0)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Size:        "A4",
			Orientation: string(api.PageOrientationPortrait),
			Margins:     Margins{Top: 72, Right: 72, Bottom: 72, Left: 72},
		},
		Pagination: PaginationConfig{
			ContentMaxHeight: api.DefaultContentMaxHeight,
			Tolerance:        4,
			MinSplitLength:   40,
			SplitRatio:       0.6,
			MaxDepth:         20,
			NewPageDelay:     "30ms",
			CascadeDelay:     "0s",
		},
		Layout: LayoutConfig{
			FontSize:   16,
			FontFamily: "Arial",
			LineHeight: "normal",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Layout.Stylesheet != "" {
		path := config.Layout.Stylesheet
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(configPath), path)
		}
		css, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read stylesheet: %w", err)
		}
		config.Layout.stylesheet = string(css)
	}
	return config, nil
}

// LoadFromDir looks for pageflow.yaml in dir. If none is found, it returns
// the default configuration.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the values that would make pagination misbehave
func (c *Config) Validate() error {
	p := c.Pagination
	switch {
	case p.ContentMaxHeight <= 0:
		return fmt.Errorf("pagination.content_max_height must be positive")
	case p.Tolerance < 0:
		return fmt.Errorf("pagination.tolerance must not be negative")
	case p.SplitRatio <= 0 || p.SplitRatio >= 1:
		return fmt.Errorf("pagination.split_ratio must be between 0 and 1")
	case p.MaxDepth < 0:
		return fmt.Errorf("pagination.max_depth must not be negative")
	}
	if _, _, ok := pageSize(c.Page.Size); !ok && (c.Page.Width <= 0 || c.Page.Height <= 0) {
		return fmt.Errorf("unknown page size %q", c.Page.Size)
	}
	switch api.PageOrientation(strings.ToLower(c.Page.Orientation)) {
	case api.PageOrientationPortrait, api.PageOrientationLandscape, "":
	default:
		return fmt.Errorf("unknown page orientation %q", c.Page.Orientation)
	}
	return nil
}

func pageSize(name string) (float64, float64, bool) {
	switch strings.ToLower(name) {
	case "a3":
		return api.PageSizeA3Width, api.PageSizeA3Height, true
	case "a4", "":
		return api.PageSizeA4Width, api.PageSizeA4Height, true
	case "a5":
		return api.PageSizeA5Width, api.PageSizeA5Height, true
	case "letter":
		return api.PageSizeLetterWidth, api.PageSizeLetterHeight, true
	case "legal":
		return api.PageSizeLegalWidth, api.PageSizeLegalHeight, true
	}
	return 0, 0, false
}

// Options converts the configuration into document options
func (c *Config) Options() api.Options {
	o := api.DefaultOptions()
	o.Title = c.Title
	o.Author = c.Author
	o.Debug = c.Debug
	o.ResourcePaths = append(o.ResourcePaths, c.ResourcePaths...)

	if c.Page.Width > 0 && c.Page.Height > 0 {
		o.PageWidth, o.PageHeight = c.Page.Width, c.Page.Height
	} else if w, h, ok := pageSize(c.Page.Size); ok {
		o.PageWidth, o.PageHeight = w, h
	}
	if c.Page.Orientation != "" {
		o.PageOrientation = api.PageOrientation(strings.ToLower(c.Page.Orientation))
	}
	m := c.Page.Margins
	o.MarginTop, o.MarginRight, o.MarginBottom, o.MarginLeft = m.Top, m.Right, m.Bottom, m.Left

	p := c.Pagination
	o.ContentMaxHeight = p.ContentMaxHeight
	o.Tolerance = p.Tolerance
	o.MinSplitLength = p.MinSplitLength
	o.SplitRatio = p.SplitRatio
	o.MaxDepth = p.MaxDepth
	o.NewPageDelay = p.GetNewPageDelay()
	o.CascadeDelay = p.GetCascadeDelay()

	if c.Layout.FontSize > 0 {
		o.FontSize = c.Layout.FontSize
	}
	if c.Layout.FontFamily != "" {
		o.FontFamily = c.Layout.FontFamily
	}
	if c.Layout.LineHeight != "" {
		o.LineHeight = c.Layout.LineHeight
	}
	o.Stylesheet = c.Layout.stylesheet
	return o
}
