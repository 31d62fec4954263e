package job

import (
	"testing"

	"github.com/oneee-playground/glue-deployer/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRequestFromSettingsLocations(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Locations = config.Locations{
		Bucket:            "cv-marketing-dev",
		TemplatePrefix:    "glue/config/",
		ConfigFile:        "orders.conf",
		DataPrefix:        "data/orders/",
		DestinationPrefix: "glue/deploy/",
	}

	req := RequestFromSettings(settings)

	assert.Equal(t, "s3://cv-marketing-dev/glue/config/orders.conf", req.Template().String())
	assert.Equal(t, "s3://cv-marketing-dev/glue/deploy/orders.conf", req.Destination().String())
	assert.Equal(t, "s3://cv-marketing-dev/data/orders/", req.Data().String())
}
