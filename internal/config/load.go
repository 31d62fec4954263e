package config

import (
	"os"
)

const defaultRegion = "us-east-1"

func LoadFromEnv() {
	Region = os.Getenv("AWS_REGION")
	if Region == "" {
		Region = defaultRegion
	}

	AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	RequestQueueURL = os.Getenv("REQUEST_QUEUE_URL")
	EventQueueURL = os.Getenv("EVENT_QUEUE_URL")

	InfluxURL = os.Getenv("INFLUX_URL")
	InfluxToken = os.Getenv("INFLUX_TOKEN")
	InfluxOrg = os.Getenv("INFLUX_ORG")
	InfluxBucket = os.Getenv("INFLUX_BUCKET")

	SettingsPath = os.Getenv("SETTINGS_PATH")
	JournalPath = os.Getenv("JOURNAL_PATH")
}
