package publishers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported publisher types.
const (
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Config is the parsed publishers file: the sinks that receive quiz.generated events.
type Config struct {
	Publishers []PublisherConfig `yaml:"publishers"`
}

// PublisherConfig declares one sink. Exactly the block matching Type is read.
type PublisherConfig struct {
	ID      string                 `yaml:"id"`
	Type    string                 `yaml:"type"`
	Enabled *bool                  `yaml:"enabled"`
	SQS     *SQSPublisherConfig    `yaml:"sqs"`
	SNS     *SNSPublisherConfig    `yaml:"sns"`
	PubSub  *PubSubPublisherConfig `yaml:"pubsub"`
	HTTP    *HTTPPublisherConfig   `yaml:"http"`
}

type SQSPublisherConfig struct {
	QueueURL string  `yaml:"uri"`
	Region   string  `yaml:"region"`
	Endpoint string  `yaml:"endpoint"`
	Auth     AWSAuth `yaml:"auth"`
}

type SNSPublisherConfig struct {
	TopicARN string  `yaml:"topic_arn"`
	Region   string  `yaml:"region"`
	Endpoint string  `yaml:"endpoint"`
	Auth     AWSAuth `yaml:"auth"`
}

type PubSubPublisherConfig struct {
	ProjectID       string `yaml:"project_id"`
	Topic           string `yaml:"topic"`
	CredentialsFile string `yaml:"credentials_file"`
}

// HTTPPublisherConfig posts events as JSON to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// LoadConfig reads the publishers file. JSON files parse too, since YAML is a superset.
func LoadConfig(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(cfg.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(cfg.Publishers))
	for i := range cfg.Publishers {
		p := &cfg.Publishers[i]
		p.normalize()
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &cfg, nil
}

// Enabled returns the sinks not switched off in the file.
func (c *Config) Enabled() []PublisherConfig {
	if c == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(c.Publishers))
	for _, p := range c.Publishers {
		if p.Enabled == nil || *p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks up a sink by id.
func (c *Config) ByID(id string) (PublisherConfig, bool) {
	if c == nil {
		return PublisherConfig{}, false
	}
	for _, p := range c.Publishers {
		if p.ID == id {
			return p, true
		}
	}
	return PublisherConfig{}, false
}

func (p *PublisherConfig) normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	trim := func(fields ...*string) {
		for _, f := range fields {
			*f = strings.TrimSpace(*f)
		}
	}
	if c := p.SQS; c != nil {
		trim(&c.QueueURL, &c.Region, &c.Endpoint)
	}
	if c := p.SNS; c != nil {
		trim(&c.TopicARN, &c.Region, &c.Endpoint)
	}
	if c := p.PubSub; c != nil {
		trim(&c.ProjectID, &c.Topic, &c.CredentialsFile)
	}
	if c := p.HTTP; c != nil {
		trim(&c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		headers := make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		c.Headers = headers
	}
}

// validate reports the first required field missing for the sink type.
func (p PublisherConfig) validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}

	var missing string
	switch p.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", p.ID)
	case TypeSQS:
		missing = firstMissing(p.SQS == nil, "sqs", "sqs.uri", p.sqs().QueueURL, "sqs.region", p.sqs().Region)
	case TypeSNS:
		missing = firstMissing(p.SNS == nil, "sns", "sns.topic_arn", p.sns().TopicARN, "sns.region", p.sns().Region)
	case TypePubSub:
		missing = firstMissing(p.PubSub == nil, "pubsub", "pubsub.project_id", p.pubsub().ProjectID, "pubsub.topic", p.pubsub().Topic)
	case TypeHTTP:
		missing = firstMissing(p.HTTP == nil, "http", "http.url", p.http().URL)
	default:
		return fmt.Errorf("unknown publisher type %q for publisher %q", p.Type, p.ID)
	}
	if missing != "" {
		return fmt.Errorf("%s is required for publisher %q", missing, p.ID)
	}
	return nil
}

// firstMissing takes the block name followed by (field name, value) pairs.
func firstMissing(blockNil bool, block string, fields ...string) string {
	if blockNil {
		return block
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return fields[i]
		}
	}
	return ""
}

func (p PublisherConfig) sqs() SQSPublisherConfig {
	if p.SQS == nil {
		return SQSPublisherConfig{}
	}
	return *p.SQS
}

func (p PublisherConfig) sns() SNSPublisherConfig {
	if p.SNS == nil {
		return SNSPublisherConfig{}
	}
	return *p.SNS
}

func (p PublisherConfig) pubsub() PubSubPublisherConfig {
	if p.PubSub == nil {
		return PubSubPublisherConfig{}
	}
	return *p.PubSub
}

func (p PublisherConfig) http() HTTPPublisherConfig {
	if p.HTTP == nil {
		return HTTPPublisherConfig{}
	}
	return *p.HTTP
}
