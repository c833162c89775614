package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

type fakePublisher struct {
	mu     sync.Mutex
	inputs []*sns.PublishInput
	failOn string
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if aws.ToString(in.TargetArn) == f.failOn {
		return nil, errors.New("endpoint disabled")
	}
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

type fakeEndpoints map[string][]string

func (f fakeEndpoints) DeviceEndpoints(_ context.Context, userID string) ([]string, error) {
	return f[userID], nil
}

func testAlert() reminder.Alert {
	return reminder.Alert{
		Key:          "medicine_m1_2024-06-01T09:00",
		Kind:         reminder.KindMedicine,
		UserID:       "u1",
		MedicineID:   "m1",
		MedicineName: "Aspirin",
		FoodTiming:   "After Food",
		Time:         "9:00 AM",
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSend_PublishesToEveryEndpoint(t *testing.T) {
	pub := &fakePublisher{}
	s := NewSender(pub, fakeEndpoints{"u1": {"arn:a", "arn:b"}}, discard())

	n, err := s.Send(context.Background(), testAlert())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.inputs, 2)

	in := pub.inputs[0]
	assert.Equal(t, "json", aws.ToString(in.MessageStructure))

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &envelope))
	assert.Equal(t, "Time to take Aspirin, After Food (9:00 AM)", envelope["default"])

	var gcm gcmPayload
	require.NoError(t, json.Unmarshal([]byte(envelope["GCM"]), &gcm))
	assert.Equal(t, "Medicine Reminder", gcm.Notification.Title)
	assert.Equal(t, "medicine_m1_2024-06-01T09:00", gcm.Notification.Tag)
	assert.Equal(t, "m1", gcm.Data["id"])
}

func TestSend_PartialFailure(t *testing.T) {
	pub := &fakePublisher{failOn: "arn:b"}
	s := NewSender(pub, fakeEndpoints{"u1": {"arn:a", "arn:b"}}, discard())

	n, err := s.Send(context.Background(), testAlert())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestSend_NoDevices(t *testing.T) {
	pub := &fakePublisher{}
	s := NewSender(pub, fakeEndpoints{}, discard())

	n, err := s.Send(context.Background(), testAlert())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.inputs)
}

func TestNilSender(t *testing.T) {
	var s *SNSSender
	s.Notify(context.Background(), testAlert())
	n, err := s.Send(context.Background(), testAlert())
	assert.NoError(t, err)
	assert.Zero(t, n)

	s, err = NewSNSSender(context.Background(), "", fakeEndpoints{}, discard())
	assert.NoError(t, err)
	assert.Nil(t, s)
}
