package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type TierPreset struct {
	WorkerType string `yaml:"workerType"`
	Workers    int32  `yaml:"workers"`
}

// Sizing controls how the compute tier is chosen from the input data size.
type Sizing struct {
	ThresholdGiB float64    `yaml:"thresholdGiB"`
	Small        TierPreset `yaml:"small"`
	Large        TierPreset `yaml:"large"`
}

// Locations are the blob store locations one deployment pass works with.
type Locations struct {
	Bucket string `yaml:"bucket"`
	// TemplatePrefix + ConfigFile is the configuration sized on each pass.
	TemplatePrefix string `yaml:"templatePrefix"`
	ConfigFile     string `yaml:"configFile"`
	// DataPrefix is the input data partition that gets measured.
	DataPrefix string `yaml:"dataPrefix"`
	// DestinationPrefix is where the sized configuration is published.
	DestinationPrefix string `yaml:"destinationPrefix"`
}

type Runtime struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	SettleDelay  time.Duration `yaml:"settleDelay"`
}

type Settings struct {
	Locations Locations         `yaml:"locations"`
	Sizing    Sizing            `yaml:"sizing"`
	Runtime   Runtime           `yaml:"runtime"`
	Tags      map[string]string `yaml:"tags"`
}

func DefaultSettings() Settings {
	return Settings{
		Sizing: Sizing{
			Small: TierPreset{WorkerType: "G.1X"},
			Large: TierPreset{WorkerType: "G.2X"},
		},
		Runtime: Runtime{
			PollInterval: 5 * time.Second,
			SettleDelay:  7 * time.Second,
		},
		// Tags in the settings file are merged over these.
		Tags: map[string]string{
			"access-org":        "edo",
			"access-department": "dps",
			"access-team":       "mt",
		},
	}
}

// LoadSettings reads a YAML settings file on top of DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "reading settings file")
	}

	return ParseSettings(b)
}

func ParseSettings(b []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := yaml.Unmarshal(b, &settings); err != nil {
		return Settings{}, errors.Wrap(err, "decoding settings")
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) Validate() error {
	if s.Sizing.ThresholdGiB <= 0 {
		return errors.New("sizing.thresholdGiB must be positive")
	}
	if s.Sizing.Small.Workers <= 0 || s.Sizing.Large.Workers <= 0 {
		return errors.New("sizing worker counts must be positive")
	}
	if s.Runtime.PollInterval <= 0 {
		return errors.New("runtime.pollInterval must be positive")
	}
	return nil
}
