package job

import (
	"github.com/google/uuid"
	"github.com/oneee-playground/glue-deployer/internal/blob"
	"github.com/oneee-playground/glue-deployer/internal/config"
)

// Request asks for one deployment pass.
type Request struct {
	ID uuid.UUID `json:"id"`

	Bucket            string `json:"bucket"`
	TemplatePrefix    string `json:"templatePrefix"`
	ConfigFile        string `json:"configFile"`
	DataPrefix        string `json:"dataPrefix"`
	DestinationPrefix string `json:"destinationPrefix"`

	ThresholdGiB float64 `json:"thresholdGiB"`
	SmallWorkers int32   `json:"smallWorkers"`
	LargeWorkers int32   `json:"largeWorkers"`
}

// RequestFromSettings builds a request out of a settings file.
func RequestFromSettings(s config.Settings) Request {
	return Request{
		ID:                uuid.New(),
		Bucket:            s.Locations.Bucket,
		TemplatePrefix:    s.Locations.TemplatePrefix,
		ConfigFile:        s.Locations.ConfigFile,
		DataPrefix:        s.Locations.DataPrefix,
		DestinationPrefix: s.Locations.DestinationPrefix,
		ThresholdGiB:      s.Sizing.ThresholdGiB,
		SmallWorkers:      s.Sizing.Small.Workers,
		LargeWorkers:      s.Sizing.Large.Workers,
	}
}

func (r Request) Template() blob.Location {
	return blob.Location{Bucket: r.Bucket, Key: r.TemplatePrefix + r.ConfigFile}
}

func (r Request) Destination() blob.Location {
	return blob.Location{Bucket: r.Bucket, Key: r.DestinationPrefix + r.ConfigFile}
}

func (r Request) Data() blob.Location {
	return blob.Location{Bucket: r.Bucket, Key: r.DataPrefix}
}
