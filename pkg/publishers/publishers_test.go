package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	cfg, ok := reg.ByID("http2")
	if !ok || cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", cfg.HTTP)
	}
}

func TestLoadRegistryAWSInlineCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: queue
    type: SQS
    sqs:
      uri: " http://localhost:4566/000000000000/board "
      region: eu-north-1
      access_key_id: test
      secret_access_key: test
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-north-1:000000000000:board
      region: eu-north-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	queue, _ := reg.ByID("queue")
	if queue.Type != TypeSQS || queue.SQS.QueueURL != "http://localhost:4566/000000000000/board" {
		t.Fatalf("sqs config not sanitized: %#v", queue.SQS)
	}
	if queue.SQS.AccessKeyID != "test" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline credentials not decoded: %#v", queue.SQS.AWSCredentials)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 publishers")
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers": [
		{"id": "a", "type": "http", "http": {"url": "https://example.com"}},
		{"id": "a", "type": "http", "http": {"url": "https://example.com"}}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadRegistryTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.toml")
	raw := `
[[publishers]]
id = "emulator"
type = "pubsub"

[publishers.pubsub]
project_id = "board-dev"
topic = "departures"
endpoint = "localhost:8085"

[[publishers]]
id = "queue"
type = "sqs"

[publishers.sqs]
uri = "http://localhost:4566/000000000000/board"
region = "eu-north-1"
endpoint = "http://localhost:4566"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	ps, ok := reg.ByID("emulator")
	if !ok || ps.PubSub.Topic != "departures" || ps.PubSub.Endpoint != "localhost:8085" {
		t.Fatalf("pubsub config not decoded: %#v", ps.PubSub)
	}
	queue, _ := reg.ByID("queue")
	if queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("embedded credentials not decoded from toml: %#v", queue.SQS)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	invalid := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "r"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
		{ID: "", Type: TypeHTTP},
		{ID: "x"},
	}
	for _, cfg := range invalid {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
