package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models bistroboard.yml for one restaurant.
type Config struct {
	Restaurant struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"restaurant"`
	Alerts struct {
		// DropPercent flags a funnel step falling by more than this week
		// over week. Zero disables drop alerts.
		DropPercent float64 `yaml:"drop_percent"`
		// MinOrders flags a week with fewer orders than this.
		MinOrders int64 `yaml:"min_orders"`
	} `yaml:"alerts"`
	Reports struct {
		Channel     string `yaml:"channel"`
		DeliveryURL string `yaml:"delivery_url"`
	} `yaml:"reports"`
	Images struct {
		GeneratorURL string `yaml:"generator_url"`
	} `yaml:"images"`
	AutoReply struct {
		PositiveTemplate string `yaml:"positive_template"`
		NegativeTemplate string `yaml:"negative_template"`
	} `yaml:"auto_reply"`
}

var validChannels = map[string]bool{"email": true, "whatsapp": true, "webhook": true}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Restaurant.ID == "" {
		return fmt.Errorf("config.restaurant.id is required")
	}
	if c.Alerts.DropPercent < 0 || c.Alerts.DropPercent > 100 {
		return fmt.Errorf("config.alerts.drop_percent must be within [0,100]")
	}
	if c.Alerts.MinOrders < 0 {
		return fmt.Errorf("config.alerts.min_orders must not be negative")
	}
	if c.Reports.Channel != "" && !validChannels[c.Reports.Channel] {
		return fmt.Errorf("config.reports.channel %q is not one of email, whatsapp, webhook", c.Reports.Channel)
	}
	for field, raw := range map[string]string{
		"config.reports.delivery_url": c.Reports.DeliveryURL,
		"config.images.generator_url": c.Images.GeneratorURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", field)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "bistroboard.yml")
}

// Default returns the default Config struct for a restaurant.
func Default(restaurantID string) *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(fmt.Sprintf(defaultTemplate, restaurantID))).Decode(&cfg)
	cfg.Restaurant.ID = restaurantID
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// ToYAML serializes the config for storage.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

const defaultTemplate = `restaurant:
  id: %s

alerts:
  drop_percent: 20
  min_orders: 10

reports:
  channel: email

auto_reply:
  positive_template: "Thank you for the kind words! We hope to see you again soon."
  negative_template: "We are sorry to hear this. Please reach out so we can make it right."
`
