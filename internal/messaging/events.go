package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-shard/internal/instance"
)

// EventSubjectRoot is the prefix of every instance lifecycle subject.
// Subscribe to "instance.>" for the full event stream.
const EventSubjectRoot = "instance"

// EventMessage is the wire envelope for instance lifecycle events.
type EventMessage struct {
	ID string `json:"id"`
	instance.Event
}

// Publisher sends a message to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventPublisher bridges registry lifecycle events onto NATS subjects.
// Publishing is fire-and-forget: failures are logged and never surfaced
// back to the registry.
type EventPublisher struct {
	pub Publisher
}

func NewEventPublisher(pub Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) PublishEvent(ev instance.Event) {
	msg := EventMessage{
		ID:    uuid.New().String(),
		Event: ev,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("marshaling instance event", "type", ev.Type, "error", err)
		return
	}

	if err := p.pub.Publish(EventSubject(ev), data); err != nil {
		slog.Warn("publishing instance event", "type", ev.Type, "instance", ev.InstanceID, "error", err)
	}
}

var subjectSanitizer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// EventSubject maps an event to its subject: instance.<id>.<type>. The
// instance id is sanitized so it stays a single subject token.
func EventSubject(ev instance.Event) string {
	return fmt.Sprintf("%s.%s.%s", EventSubjectRoot, subjectSanitizer.Replace(ev.InstanceID), ev.Type)
}
