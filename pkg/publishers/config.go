package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sink types.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const defaultWebhookTimeoutSeconds = 5

// Config is the publishers file: the sinks the users API notifies and the
// lifecycle events each of them subscribes to.
type Config struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig declares one sink. An empty Events list subscribes it to every event.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	Events  []string               `json:"events" yaml:"events"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPPublisherConfig describes a webhook receiving events as JSON.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSAccess holds the region plus optional static credentials and an endpoint override (e.g. localstack).
type AWSAccess struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSPublisherConfig targets an SQS queue.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSAccess `json:",inline" yaml:",inline"`
}

// SNSPublisherConfig targets an SNS topic.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSAccess `json:",inline" yaml:",inline"`
}

// PubSubPublisherConfig targets a Pub/Sub topic. Endpoint points at an emulator.
type PubSubPublisherConfig struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Topic     string `json:"topic" yaml:"topic"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
}

// LoadConfig reads a publishers file. The format follows the extension: .yaml, .yml or .json.
func LoadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read publishers file: %w", err)
	}
	return ParseConfig(raw, filepath.Ext(path))
}

// ParseConfig decodes and validates publishers declared in data.
func ParseConfig(data []byte, ext string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported publishers file extension %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(cfg.Publishers) == 0 {
		return Config{}, errors.New("publishers file declares no publishers")
	}

	seen := make(map[string]bool, len(cfg.Publishers))
	for i := range cfg.Publishers {
		p := &cfg.Publishers[i]
		p.normalize()
		if err := p.validate(); err != nil {
			return Config{}, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[p.ID] {
			return Config{}, fmt.Errorf("duplicate publisher id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return cfg, nil
}

// Enabled returns the publishers that are switched on, in file order.
func (c Config) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, p := range c.Publishers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// IsEnabled reports the enabled flag. Publishers are on unless disabled explicitly.
func (p PublisherConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

func (p *PublisherConfig) normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))

	var events []string
	for _, e := range p.Events {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !slices.Contains(events, e) {
			events = append(events, e)
		}
	}
	p.Events = events

	if p.HTTP != nil {
		h := *p.HTTP
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = http.MethodPost
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = defaultWebhookTimeoutSeconds
		}
		headers := make(map[string]string, len(h.Headers))
		for k, v := range h.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		h.Headers = headers
		p.HTTP = &h
	}
	if p.SQS != nil {
		q := *p.SQS
		q.QueueURL = strings.TrimSpace(q.QueueURL)
		q.AWSAccess = q.AWSAccess.trimmed()
		p.SQS = &q
	}
	if p.SNS != nil {
		s := *p.SNS
		s.TopicARN = strings.TrimSpace(s.TopicARN)
		s.AWSAccess = s.AWSAccess.trimmed()
		p.SNS = &s
	}
	if p.PubSub != nil {
		g := *p.PubSub
		g.ProjectID = strings.TrimSpace(g.ProjectID)
		g.Topic = strings.TrimSpace(g.Topic)
		g.Endpoint = strings.TrimSpace(g.Endpoint)
		p.PubSub = &g
	}
}

func (a AWSAccess) trimmed() AWSAccess {
	return AWSAccess{
		Region:          strings.TrimSpace(a.Region),
		Endpoint:        strings.TrimSpace(a.Endpoint),
		AccessKeyID:     strings.TrimSpace(a.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(a.SecretAccessKey),
	}
}

func (p PublisherConfig) validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	for _, e := range p.Events {
		if !slices.Contains(EventTypes, e) {
			return fmt.Errorf("publisher %q subscribes to unknown event %q", p.ID, e)
		}
	}

	var missing string
	switch p.Type {
	case TypeHTTP:
		switch {
		case p.HTTP == nil || p.HTTP.URL == "":
			missing = "http.url"
		case p.HTTP.Method != http.MethodPost && p.HTTP.Method != http.MethodPut && p.HTTP.Method != http.MethodPatch:
			return fmt.Errorf("publisher %q: http.method %s cannot carry an event body", p.ID, p.HTTP.Method)
		}
	case TypeSQS:
		switch {
		case p.SQS == nil || p.SQS.QueueURL == "":
			missing = "sqs.uri"
		case p.SQS.Region == "":
			missing = "sqs.region"
		}
	case TypeSNS:
		switch {
		case p.SNS == nil || p.SNS.TopicARN == "":
			missing = "sns.topic_arn"
		case p.SNS.Region == "":
			missing = "sns.region"
		}
	case TypePubSub:
		switch {
		case p.PubSub == nil || p.PubSub.ProjectID == "":
			missing = "pubsub.project_id"
		case p.PubSub.Topic == "":
			missing = "pubsub.topic"
		}
	case "":
		return fmt.Errorf("publisher %q has no type", p.ID)
	default:
		return fmt.Errorf("publisher %q has unsupported type %q", p.ID, p.Type)
	}
	if missing != "" {
		return fmt.Errorf("publisher %q: %s is required", p.ID, missing)
	}
	return nil
}
