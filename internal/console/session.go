package console

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-shard/internal/commands"
	"github.com/pixil98/go-shard/internal/messaging"
)

// Session is one interactive admin console over a telnet or ssh connection.
// Commands run against the shared handler; registry lifecycle events are
// echoed between prompts as they arrive.
type Session struct {
	conn     io.ReadWriter
	scanner  *bufio.Scanner
	handler  *commands.Handler
	operator string

	events <-chan []byte
}

func (s *Session) Run(ctx context.Context) error {
	// Pump input lines into a channel so the loop can also watch the
	// context and the event feed.
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		for s.scanner.Scan() {
			inputChan <- s.scanner.Text()
		}
		inputErrChan <- s.scanner.Err()
		close(inputChan)
	}()

	err := s.writeLine(fmt.Sprintf("Connected as %s. Type 'help' for commands, 'quit' to disconnect.", s.operator))
	if err != nil {
		return err
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data := <-s.events:
			if err := s.writeLine("\n" + formatEvent(data)); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost.
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line == "" {
				if err := s.prompt(); err != nil {
					return err
				}
				continue
			}

			parts := strings.Fields(line)
			cmdName := parts[0]
			args := parts[1:]

			if cmdName == "quit" || cmdName == "exit" {
				s.writeLine("Goodbye!")
				return nil
			}

			var out bytes.Buffer
			err := s.handler.Exec(ctx, &out, s.operator, cmdName, args...)
			if out.Len() > 0 {
				if _, werr := s.conn.Write(out.Bytes()); werr != nil {
					return werr
				}
			}
			if err != nil {
				var userErr *commands.UserError
				if errors.As(err, &userErr) {
					if werr := s.writeLine(userErr.Message); werr != nil {
						return werr
					}
				} else {
					// System error - log and disconnect
					return fmt.Errorf("command execution failed: %w", err)
				}
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) prompt() error {
	_, err := s.conn.Write([]byte("> "))
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := s.conn.Write([]byte(msg + "\n"))
	return err
}

// formatEvent renders an event feed payload for display. Unparseable
// payloads are shown raw.
func formatEvent(data []byte) string {
	var msg messaging.EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Sprintf("[event] %s", string(data))
	}

	line := fmt.Sprintf("[event] %s instance=%s", msg.Type, msg.InstanceID)
	if msg.PlayerID != "" {
		line += fmt.Sprintf(" player=%s", msg.PlayerID)
	}
	return line
}
