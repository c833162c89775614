// Package push mirrors produced alerts to mobile devices through SNS
// platform endpoints. The poll endpoints remain the source of truth; a
// failed push is logged and counted, never retried.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/albapepper/meditrack-alerts/internal/metrics"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

const sendTimeout = 10 * time.Second

// Publisher is the subset of the SNS client used here.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EndpointSource resolves a user's active platform endpoint ARNs.
type EndpointSource interface {
	DeviceEndpoints(ctx context.Context, userID string) ([]string, error)
}

// SNSSender publishes alerts to every registered device of the owner.
// Nil-safe: when not configured, all methods are no-ops.
type SNSSender struct {
	client    Publisher
	endpoints EndpointSource
	logger    *slog.Logger
}

// NewSNSSender loads AWS credentials from the default chain.
// Returns nil if region is empty (push disabled).
func NewSNSSender(ctx context.Context, region string, endpoints EndpointSource, logger *slog.Logger) (*SNSSender, error) {
	if region == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSender(sns.NewFromConfig(cfg), endpoints, logger), nil
}

// NewSender wraps an existing publisher.
func NewSender(client Publisher, endpoints EndpointSource, logger *slog.Logger) *SNSSender {
	return &SNSSender{client: client, endpoints: endpoints, logger: logger}
}

// Notify sends in the background so the matcher tick is never held up by
// the network.
func (s *SNSSender) Notify(ctx context.Context, a reminder.Alert) {
	if s == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if _, err := s.Send(ctx, a); err != nil {
			s.logger.Warn("push failed", "key", a.Key, "user_id", a.UserID, "error", err)
		}
	}()
}

// Send publishes a to each endpoint of its owner and returns how many
// publishes succeeded.
func (s *SNSSender) Send(ctx context.Context, a reminder.Alert) (int, error) {
	if s == nil {
		return 0, nil
	}
	arns, err := s.endpoints.DeviceEndpoints(ctx, a.UserID)
	if err != nil {
		return 0, fmt.Errorf("device endpoints: %w", err)
	}
	if len(arns) == 0 {
		metrics.PushSent.WithLabelValues("no_device").Inc()
		return 0, nil
	}

	msg, err := message(a)
	if err != nil {
		return 0, err
	}

	var errs []error
	sent := 0
	for _, arn := range arns {
		_, err := s.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(arn),
			Message:          aws.String(msg),
			MessageStructure: aws.String("json"),
		})
		if err != nil {
			metrics.PushSent.WithLabelValues("failed").Inc()
			errs = append(errs, fmt.Errorf("publish to %s: %w", arn, err))
			continue
		}
		metrics.PushSent.WithLabelValues("sent").Inc()
		sent++
	}
	return sent, errors.Join(errs...)
}

type gcmPayload struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Tag   string `json:"tag"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

type apnsPayload struct {
	APS struct {
		Alert struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"alert"`
		ThreadID string `json:"thread-id"`
	} `json:"aps"`
	Key string `json:"key"`
}

// message builds the per-platform SNS JSON envelope. The occurrence key is
// the notification tag so a device shows each occurrence once.
func message(a reminder.Alert) (string, error) {
	var g gcmPayload
	g.Notification.Title = a.Title()
	g.Notification.Body = a.Body()
	g.Notification.Tag = string(a.Key)
	g.Data = map[string]string{"key": string(a.Key), "type": string(a.Kind), "id": a.RecordID()}

	var p apnsPayload
	p.APS.Alert.Title = a.Title()
	p.APS.Alert.Body = a.Body()
	p.APS.ThreadID = string(a.Kind)
	p.Key = string(a.Key)

	gcm, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode gcm payload: %w", err)
	}
	apns, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode apns payload: %w", err)
	}
	envelope, err := json.Marshal(map[string]string{
		"default":      a.Body(),
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", fmt.Errorf("encode sns message: %w", err)
	}
	return string(envelope), nil
}
