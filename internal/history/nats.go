package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"typerace/internal/events"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const MatchFinishedSubject = "typerace.match.finished"

// NATSSink publishes every finished match as JSON for other services.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("typerace"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return &NATSSink{conn: conn, subject: MatchFinishedSubject}, nil
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) SaveMatch(ctx context.Context, ev events.MatchFinished) error {
	data, err := json.Marshal(Summarize(ev))
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publishing match: %w", err)
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats: %w", err)
	}
	return nil
}

// Close drains pending publishes before closing the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
