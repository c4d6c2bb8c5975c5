package sink

import (
	"fmt"
	"time"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/factory"
	"Go2NetWatch/internal/model"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef, _ factory.Deps) (model.Writer, error) {
		interval, err := def.FlushInterval()
		if err != nil {
			return nil, err
		}
		return NewPublisher(def.NATS, interval)
	})
}

// Publisher publishes snapshots to a NATS subject.
type Publisher struct {
	nc       *nats.Conn
	subject  string
	interval time.Duration
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig, interval time.Duration) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("netwatch-publisher"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject, interval: interval}, nil
}

// Write publishes each snapshot as its own message.
func (p *Publisher) Write(snapshots []model.MetricsSnapshot) error {
	for _, s := range snapshots {
		data, err := EncodeSnapshot(s)
		if err != nil {
			return err
		}
		if err := p.nc.Publish(p.subject, data); err != nil {
			return fmt.Errorf("failed to publish snapshot: %w", err)
		}
	}
	return p.nc.Flush()
}

// GetInterval returns the configured flush interval for this writer.
func (p *Publisher) GetInterval() time.Duration {
	return p.interval
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return err
	}
	log.Println("NATS connection drained and closed.")
	return nil
}

// SnapshotHandler processes a snapshot received from the stream.
type SnapshotHandler func(s model.MetricsSnapshot, score float64)

// Subscriber consumes snapshots from a NATS subject.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("netwatch-subscriber"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the subject and hands every decoded snapshot to handler.
func (s *Subscriber) Start(handler SnapshotHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		snap, score, err := DecodeSnapshot(msg.Data)
		if err != nil {
			log.Printf("Error decoding snapshot: %v", err)
			return
		}
		handler(snap, score)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for snapshots...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
