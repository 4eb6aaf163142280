package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-shard/internal/commands"
	"github.com/pixil98/go-shard/internal/messaging"
)

// Subscriber delivers messages published on a subject. Implemented by the
// embedded NATS server.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Manager creates an admin console session per accepted connection. The
// subscriber is optional; without one, sessions simply don't see the live
// event feed.
type Manager struct {
	handler *commands.Handler
	sub     Subscriber
}

func NewManager(handler *commands.Handler, sub Subscriber) *Manager {
	return &Manager{
		handler: handler,
		sub:     sub,
	}
}

// RunSession runs one interactive console session over the connection. It
// returns when the operator quits, the connection drops, or the context is
// canceled.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	scanner := bufio.NewScanner(conn)

	operator, err := readLine(conn, scanner, "Operator id (enter for console): ")
	if err != nil {
		return err
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		operator = commands.ConsoleSenderID
	}

	var events chan []byte
	if m.sub != nil {
		events = make(chan []byte, 16)
		unsub, err := m.sub.Subscribe(messaging.EventSubjectRoot+".>", func(data []byte) {
			// Drop rather than block: the event feed is best-effort.
			select {
			case events <- data:
			default:
			}
		})
		if err != nil {
			slog.Warn("subscribing to instance events", "error", err)
			events = nil
		} else {
			defer unsub()
		}
	}

	s := &Session{
		conn:     conn,
		scanner:  scanner,
		handler:  m.handler,
		operator: operator,
		events:   events,
	}
	return s.Run(ctx)
}

// readLine writes a prompt and reads one line through the shared scanner.
func readLine(w io.Writer, scanner *bufio.Scanner, prompt string) (string, error) {
	if _, err := w.Write([]byte(prompt)); err != nil {
		return "", err
	}
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return scanner.Text(), nil
}
