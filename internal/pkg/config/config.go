package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

const DefaultOkteURL = "https://isot.okte.sk/api/v1/dam/results"

type Config struct {
	Name         string     `env:"NAME" envDefault:"OKTE DAM"`
	OkteCfg      OkteConfig `envPrefix:"OKTE_"`
	MqttCfg      MqttConfig `envPrefix:"MQTT_"`
	PollSchedule string     `env:"POLL_SCHEDULE" envDefault:"@every 30m"`
	HTTPAddr     string     `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel     string     `env:"LOG_LEVEL" envDefault:"INFO"`
}

type OkteConfig struct {
	URL     string        `env:"URL" envDefault:"https://isot.okte.sk/api/v1/dam/results"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// The OKTE endpoint has been served with an incomplete certificate chain,
	// so verification is off unless asked for.
	InsecureSkipVerify bool        `env:"INSECURE_SKIP_VERIFY" envDefault:"true"`
	Range              model.Range `env:"RANGE" envDefault:"today_tomorrow"`
}

type MqttConfig struct {
	Host            string `env:"HOST"`
	Username        string `env:"USER"`
	Password        string `env:"PASS"`
	ClientID        string `env:"CLIENT_ID" envDefault:"okte-dam"`
	DiscoveryPrefix string `env:"DISCOVERY_PREFIX" envDefault:"homeassistant"`
}

// Enabled reports whether a broker has been configured.
func (c MqttConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
