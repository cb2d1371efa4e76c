package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// CompletionNotifier hands a completed (user, quiz) pair to the
// certificate/email collaborator. Implementations must be safe to call
// from a detached goroutine: the request path never awaits them, their
// failures never roll back the submission they follow, and retries are
// the consumer's concern.
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, userID, quizID uint) error
}

// CompletionEvent is the wire form handed to the notification consumer.
type CompletionEvent struct {
	Source      string    `json:"source"`
	UserID      uint      `json:"user_id"`
	QuizID      uint      `json:"quiz_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type natsNotifier struct {
	conn    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

// NewNATSNotifier publishes completion events to a NATS subject; the
// certificate/email worker consumes them out of process.
func NewNATSNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) CompletionNotifier {
	return &natsNotifier{
		conn:    conn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "completion_notifier").Logger(),
	}
}

func (n *natsNotifier) NotifyCompletion(_ context.Context, userID, quizID uint) error {
	event := CompletionEvent{
		Source:      n.nodeID,
		UserID:      userID,
		QuizID:      quizID,
		CompletedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		return err
	}

	n.logger.Debug().Uint("user_id", userID).Uint("quiz_id", quizID).Msg("completion event published")
	return nil
}

type nopNotifier struct{}

// NewNopNotifier returns a notifier that drops events. Used when no
// broker is configured.
func NewNopNotifier() CompletionNotifier {
	return nopNotifier{}
}

func (nopNotifier) NotifyCompletion(context.Context, uint, uint) error {
	return nil
}
