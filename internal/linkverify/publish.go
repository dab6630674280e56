package linkverify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// ReportEvent is the message published after an analysis run.
type ReportEvent struct {
	Site      string    `json:"site"`
	Timestamp time.Time `json:"timestamp"`
	Report    *Report   `json:"report"`
}

// Publisher delivers report events downstream.
type Publisher interface {
	Publish(ctx context.Context, event ReportEvent) error
	Close() error
}

// NATSPublisher publishes report events on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("guidebuilder"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event ReportEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal link report").Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish link report").
			WithContext("subject", p.subject).
			Build()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to flush link report").
			WithContext("subject", p.subject).
			Build()
	}
	slog.Debug("Published link report", slog.String("subject", p.subject), slog.Int("pages", event.Report.Total()))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
