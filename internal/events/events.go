// Package events announces recorded workouts to an activity feed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"backend-workoutmap/internal/workout"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const TypeWorkoutRecorded = "workout.recorded"

type WorkoutRecorded struct {
	EventID    string       `json:"event_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Workout    workout.Flat `json:"workout"`
}

func NewWorkoutRecorded(rec workout.Record, at time.Time) WorkoutRecorded {
	return WorkoutRecorded{
		EventID:    uuid.NewString(),
		OccurredAt: at.UTC(),
		Workout:    rec.Flat(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev WorkoutRecorded) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, WorkoutRecorded) error { return nil }
func (Nop) Close() error                                   { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	writer messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}}
}

// Publish keys the message by workout id so one workout's events stay on a
// single partition.
func (k *Kafka) Publish(ctx context.Context, ev WorkoutRecorded) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Workout.ID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TypeWorkoutRecorded)},
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	})
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
