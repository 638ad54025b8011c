// internal/workers/scoring/record-decision/config.go
package recorddecision

import "time"

type Config struct {
	Timeout      time.Duration
	AWSRegion    string
	SenderEmail  string
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		AWSRegion:    "us-east-1",
		SenderEmail:  "decisions@agroscore.example.com",
		EmailEnabled: false,
		SMSEnabled:   false,
	}
}
