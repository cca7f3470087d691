package bus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Stdio carries the bus over newline-delimited JSON pipes, one payload per
// line. It is the transport used when the bridge runs behind a relay process;
// richer transports plug in through contract.Consumer and contract.Publisher.
type Stdio struct {
	mu    sync.Mutex
	out   io.Writer
	lines chan []byte
	done  chan struct{}
	once  sync.Once
}

func NewStdio(in io.Reader, out io.Writer) *Stdio {
	s := &Stdio{
		out:   out,
		lines: make(chan []byte),
		done:  make(chan struct{}),
	}
	go s.read(in)

	return s
}

func (s *Stdio) read(in io.Reader) {
	defer close(s.lines)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case s.lines <- line:
		case <-s.done:
			return
		}
	}
}

func (s *Stdio) Receive(ctx context.Context) ([]byte, error) {
	// A closed transport reports end of input even when the reader still
	// holds an undelivered line.
	select {
	case <-s.done:
		return nil, io.EOF
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, io.EOF
	case line, ok := <-s.lines:
		if !ok {
			return nil, io.EOF
		}
		return line, nil
	}
}

func (s *Stdio) Publish(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.out, "%s\n", message); err != nil {
		return fmt.Errorf("publishing message: %w", err)
	}

	return nil
}

// Close releases the reader goroutine; undelivered lines are dropped and
// further receives report end of input.
func (s *Stdio) Close() {
	s.once.Do(func() { close(s.done) })
}
