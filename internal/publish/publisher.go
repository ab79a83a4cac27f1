// Package publish sends retained activity samples to Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/activityfilter/internal/domain"
	"example.com/activityfilter/internal/events"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Publisher emits one RunningSampleFiltered event per retained row.
type Publisher struct {
	producer messageWriter
	topic    string
	source   string
	now      func() time.Time
}

// Option configures optional behaviour for the Publisher.
type Option func(*Publisher)

// WithClock overrides the timestamp source used for filtered_at.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// WithSource sets the source field, normally the input file path.
func WithSource(source string) Option {
	return func(p *Publisher) {
		p.source = source
	}
}

// NewPublisher constructs a Publisher writing to topic through producer.
func NewPublisher(producer messageWriter, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes every row of ds as a single synchronous batch and returns the
// number of records delivered.
func (p *Publisher) Publish(ctx context.Context, runID string, ds domain.Dataset) (int, error) {
	if ds.Len() == 0 {
		return 0, nil
	}

	filteredAt := p.now().UTC()
	activityIdx := ds.ColumnIndex(domain.ActivityTypeColumn)
	msgs := make([]kafka.Message, 0, ds.Len())
	for i := range ds.Rows {
		rec := ds.Record(i)
		risk := domain.Assess(domain.VitalsFromRecord(rec))
		evt := events.RunningSampleFiltered{
			RunID:      runID,
			Row:        ds.SourceRow(i),
			Fields:     rec,
			RiskLevel:  int(risk.Level),
			Decision:   risk.Decision,
			Source:     p.source,
			FilteredAt: filteredAt,
		}
		if activityIdx >= 0 {
			evt.ActivityType = ds.Rows[i][activityIdx]
		}
		payload, err := json.Marshal(evt)
		if err != nil {
			return 0, fmt.Errorf("%w: encode row %d: %v", domain.ErrPublish, evt.Row, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(runID),
			Value: payload,
			Time:  filteredAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(events.EventTypeRunningSampleFiltered)},
				{Key: "run_id", Value: []byte(runID)},
			},
		})
	}

	if err := p.producer.WriteMessages(ctx, p.topic, msgs...); err != nil {
		return 0, fmt.Errorf("%w: topic %s: %v", domain.ErrPublish, p.topic, err)
	}
	return len(msgs), nil
}
