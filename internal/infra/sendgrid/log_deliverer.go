package sendgrid

import (
	"context"

	"adaptive-quiz-service/internal/logger"
	"adaptive-quiz-service/internal/report"
)

// LogDeliverer records deliveries in the log instead of sending them. It
// backs the "log" delivery provider for local runs.
type LogDeliverer struct {
	log *logger.Logger
}

func NewLogDeliverer(log *logger.Logger) *LogDeliverer {
	return &LogDeliverer{log: log.With("component", "delivery")}
}

func (d *LogDeliverer) Deliver(_ context.Context, name, email string, documents ...report.Artifact) error {
	names := make([]string, 0, len(documents))
	for _, doc := range documents {
		names = append(names, doc.Name)
	}
	d.log.Info("delivery skipped, log provider configured", "name", name, "email", email, "documents", names)
	return nil
}
