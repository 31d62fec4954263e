package config

var (
	Region          string
	AccessKeyID     string
	SecretAccessKey string
)

var (
	RequestQueueURL string
	EventQueueURL   string
)

var (
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
)

var (
	SettingsPath string
	JournalPath  string
)
