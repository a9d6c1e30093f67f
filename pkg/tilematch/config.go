package tilematch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/storage"
)

// Config is a YAML run profile. ${VAR} references are expanded from the
// environment before parsing.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Reference ReferenceConfig `yaml:"reference"`
	Output    OutputConfig    `yaml:"output"`
	Storage   storage.Config  `yaml:"storage"`
}

// SourceConfig configures the tower table.
type SourceConfig struct {
	Format   string `yaml:"format"`
	Encoding string `yaml:"encoding"`
}

// ReferenceConfig configures the potential table.
type ReferenceConfig struct {
	Path       string                 `yaml:"path"`
	Encoding   string                 `yaml:"encoding"`
	CellColumn string                 `yaml:"cell_column"`
	Columns    []string               `yaml:"columns"`
	BatchSize  int                    `yaml:"batch_size"`
	Operator   *parser.OperatorFilter `yaml:"operator"`
}

// OutputConfig configures the exported workbook.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

// LoadConfig reads and parses a profile.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply copies the profile's non-empty settings into opts.
func (c *Config) Apply(opts *Options) error {
	if c.Source.Format != "" {
		f, err := ParseFormat(c.Source.Format)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	if c.Source.Encoding != "" {
		opts.Encoding = c.Source.Encoding
	}

	ref := c.Reference
	if ref.Path != "" {
		opts.ReferencePath = ref.Path
	}
	if ref.Encoding != "" {
		opts.ReferenceEncoding = ref.Encoding
	}
	if ref.CellColumn != "" {
		opts.Reference.CellColumn = ref.CellColumn
	}
	if len(ref.Columns) > 0 {
		opts.Reference.Columns = ref.Columns
	}
	if ref.BatchSize != 0 {
		opts.Reference.BatchSize = ref.BatchSize
	}
	if ref.Operator != nil {
		opts.Reference.Operator = ref.Operator
	}

	if c.Output.Dir != "" {
		opts.OutputDir = c.Output.Dir
	}
	if c.Output.Name != "" {
		opts.OutputName = c.Output.Name
	}

	if c.Storage != (storage.Config{}) {
		opts.Storage = c.Storage
	}
	return nil
}
