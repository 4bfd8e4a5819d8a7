package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/infra/rabbitmq"
	"github.com/swinglab/swinglab-detection-service/pkg/logger"
)

func TestStatusPublishEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rmqContainer, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	log, err := logger.New("debug")
	require.NoError(t, err)

	pub, err := rabbitmq.NewStatusPublisher(rmqURL, "swinglab.video", "detection.status", log)
	require.NoError(t, err)
	defer pub.Close()

	job := entity.NewDetectionJob("/corpus/vid.mp4", "vid")
	job.MarkDone(
		[]entity.Event{{Time: 30}},
		[]entity.Clip{{Name: "vid_01_20.0s.mp4", Start: 20, End: 40, Event: 30}},
		60,
	)
	body, err := json.Marshal(entity.StatusMessageFromJob(job))
	require.NoError(t, err)
	require.NoError(t, pub.PublishStatus(ctx, body))

	conn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	deliveries, err := ch.Consume("detection.status", "", true, false, false, false, nil)
	require.NoError(t, err)

	var msg entity.DetectionStatusMessage
	select {
	case d := <-deliveries:
		require.NoError(t, json.Unmarshal(d.Body, &msg))
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for status message")
	}

	assert.Equal(t, job.ID, msg.JobID)
	assert.Equal(t, entity.JobStatusDone, msg.Status)
	assert.Equal(t, 1, msg.EventCount)
	assert.Equal(t, []string{"vid_01_20.0s.mp4"}, msg.Clips)
	assert.Equal(t, 60.0, msg.Duration)
}
