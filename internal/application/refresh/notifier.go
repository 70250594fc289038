package refresh

import (
	"context"
	"time"

	"github.com/turtacn/casefolio/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
)

// Notifier is told about every finished run, cancelled ones included.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, res *Result) error
}

// LogNotifier writes a one-line summary of each run.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, res *Result) error {
	n.logger.Info("Price refresh finished",
		logging.String("run_id", res.RunID),
		logging.Int("total", res.Total),
		logging.Int("done", res.Done),
		logging.Int("failed", res.Failed),
		logging.Int("priced", len(res.Prices)),
		logging.Bool("cancelled", res.Cancelled),
		logging.Duration("duration", res.Duration()),
	)
	return nil
}

// Publisher is the subset of the Kafka producer used for events.
type Publisher interface {
	Publish(ctx context.Context, msg *kafka.Message) error
}

// CompletedEvent is the payload of refresh.completed.
type CompletedEvent struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Total      int              `json:"total"`
	Done       int              `json:"done"`
	Failed     int              `json:"failed"`
	Cancelled  bool             `json:"cancelled"`
	Prices     map[string]int64 `json:"prices"`
}

// KafkaNotifier publishes a refresh.completed envelope keyed by run id.
type KafkaNotifier struct {
	publisher Publisher
	topic     string
	source    string
}

func NewKafkaNotifier(p Publisher, topic string) *KafkaNotifier {
	if topic == "" {
		topic = kafka.TopicRefreshCompleted
	}
	return &KafkaNotifier{publisher: p, topic: topic, source: "casefolio"}
}

func (n *KafkaNotifier) Name() string { return "kafka" }

func (n *KafkaNotifier) Notify(ctx context.Context, res *Result) error {
	env, err := kafka.NewEventEnvelope(kafka.EventRefreshCompleted, n.source, CompletedEvent{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Total:      res.Total,
		Done:       res.Done,
		Failed:     res.Failed,
		Cancelled:  res.Cancelled,
		Prices:     res.Prices,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(n.topic, res.RunID)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, msg)
}

//Personal.AI order the ending
