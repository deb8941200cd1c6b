package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"vendorportal/config"
	"vendorportal/logger"
)

var ErrTriggerNotConfigured = errors.New("etl trigger not configured")

// Trigger tells the ETL pipeline that a submission landed in the raw zone.
type Trigger interface {
	Trigger(ctx context.Context, vendor, submissionID string) error
}

type triggerPayload struct {
	Vendor       string `json:"vendor"`
	SubmissionID string `json:"submission_id"`
}

// WebhookTrigger POSTs {vendor, submission_id} to a URL.
type WebhookTrigger struct {
	url    string
	client *http.Client
	log    logger.Logger
}

func NewWebhookTrigger(url string, timeout time.Duration, log logger.Logger) *WebhookTrigger {
	return &WebhookTrigger{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (w *WebhookTrigger) Trigger(ctx context.Context, vendor, submissionID string) error {
	if w.url == "" {
		w.log.Errorf(ctx, "ETL trigger url not configured")
		return ErrTriggerNotConfigured
	}
	body, err := json.Marshal(triggerPayload{Vendor: vendor, SubmissionID: submissionID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build etl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Errorf(ctx, "ETL trigger failed: %v", err)
		return fmt.Errorf("post etl trigger: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		w.log.Errorf(ctx, "ETL trigger failed: status %d", resp.StatusCode)
		return fmt.Errorf("etl trigger returned status %d", resp.StatusCode)
	}
	w.log.Infof(ctx, "ETL triggered for vendor=%s", vendor)
	return nil
}

// KafkaWriter is the part of kafka.Writer the trigger needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTrigger publishes the trigger as a message keyed by vendor.
type KafkaTrigger struct {
	writer KafkaWriter
	log    logger.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaTrigger(w KafkaWriter, log logger.Logger) *KafkaTrigger {
	return &KafkaTrigger{writer: w, log: log}
}

func (k *KafkaTrigger) Trigger(ctx context.Context, vendor, submissionID string) error {
	value, err := json.Marshal(triggerPayload{Vendor: vendor, SubmissionID: submissionID})
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(vendor), Value: value}); err != nil {
		k.log.Errorf(ctx, "ETL trigger failed: %v", err)
		return fmt.Errorf("publish etl trigger: %w", err)
	}
	k.log.Infof(ctx, "ETL triggered for vendor=%s", vendor)
	return nil
}

func (k *KafkaTrigger) Close() error {
	return k.writer.Close()
}

// NoopTrigger only logs.
type NoopTrigger struct {
	log logger.Logger
}

func (n NoopTrigger) Trigger(ctx context.Context, vendor, submissionID string) error {
	n.log.Infof(ctx, "ETL trigger disabled, skipping vendor=%s submission=%s", vendor, submissionID)
	return nil
}

// NewTrigger builds the trigger for the configured mode.
func NewTrigger(cfg config.ETLConfig, log logger.Logger) (Trigger, error) {
	switch cfg.Mode {
	case "webhook":
		return NewWebhookTrigger(cfg.TriggerURL, cfg.Timeout, log), nil
	case "kafka":
		return NewKafkaTrigger(NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), log), nil
	case "none", "":
		return NoopTrigger{log: log}, nil
	default:
		return nil, fmt.Errorf("unknown etl mode %q", cfg.Mode)
	}
}
