package emails

import (
	"context"

	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

// Message is a rendered outbound email.
type Message struct {
	To       string
	ToName   string
	From     string
	FromName string
	Subject  string
	Body     string
}

// Sender delivers rendered messages. Actual delivery is owned by the hosting
// platform; this service only hands messages over.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes the would-be delivery to the structured log. It is the
// default wiring until a real provider is attached.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender builds the logging sender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.log == nil {
		return nil
	}
	logCtx := s.log.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	s.log.Info(logCtx, "email handed off")
	return nil
}
