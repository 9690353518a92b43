package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/muesli/cancelreader"
)

// ErrClosed is returned by Next once the source has been closed.
var ErrClosed = errors.New("input source closed")

// Event is the envelope producers push into the source: either an action
// or the error that ended the producer.
type Event struct {
	Action Action
	Err    error
}

// Producer runs until quit is closed or it fails. emit delivers an event
// and returns false once the source is shutting down.
type Producer func(quit <-chan struct{}, emit func(Event) bool)

// Source fans in every producer (device readers, the local key reader, file
// watchers) onto one channel drawn from by Next.
type Source struct {
	log    *slog.Logger
	events chan Event
	quit   chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	stops  []func()
	closed bool
}

func NewSource(log *slog.Logger) *Source {
	return &Source{
		log:    log,
		events: make(chan Event, 64),
		quit:   make(chan struct{}),
	}
}

// Go starts p in its own goroutine. stop, if not nil, is called by Close to
// unblock p.
func (s *Source) Go(p Producer, stop func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		return
	}
	if stop != nil {
		s.stops = append(s.stops, stop)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		p(s.quit, s.emit)
	}()
}

func (s *Source) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.quit:
		return false
	}
}

func (s *Source) closing() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// AddDevice reads key-down events from dev and emits the actions bound to
// them. Unbound keys are dropped. A read error is emitted once and ends
// this reader only.
func (s *Source) AddDevice(dev Device, lookup map[string]Action) {
	s.Go(func(quit <-chan struct{}, emit func(Event) bool) {
		for {
			ev, err := dev.ReadKey()
			if err != nil {
				if s.closing() {
					return
				}
				s.log.Error("device read failed", "device", dev.Name(), "err", err)
				emit(Event{Err: fmt.Errorf("device %s: %w", dev.Name(), err)})
				return
			}
			if !ev.Down {
				continue
			}
			a, ok := lookup[ev.Key]
			if !ok {
				continue
			}
			s.log.Debug("hotkey", "device", dev.Name(), "key", ev.Key, "action", a)
			if !emit(Event{Action: a}) {
				return
			}
		}
	}, func() { dev.Close() })
}

// AddLocal reads single characters from r and emits the fixed local
// commands. End of input is emitted as an error.
func (s *Source) AddLocal(r io.Reader) error {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return fmt.Errorf("local input: %w", err)
	}

	stop := func() {
		if !cr.Cancel() {
			// fallback readers can only be unblocked by closing the source
			if c, ok := r.(io.Closer); ok {
				c.Close()
			}
		}
	}

	s.Go(func(quit <-chan struct{}, emit func(Event) bool) {
		defer cr.Close()
		buf := make([]byte, 1)
		for {
			n, err := cr.Read(buf)
			if err != nil {
				if s.closing() || errors.Is(err, cancelreader.ErrCanceled) {
					return
				}
				emit(Event{Err: fmt.Errorf("local input: %w", err)})
				return
			}
			if n == 0 {
				continue
			}
			a, ok := LocalKeys.Lookup(string(buf[:n]))
			if !ok {
				continue
			}
			if !emit(Event{Action: a}) {
				return
			}
		}
	}, stop)
	return nil
}

// Next blocks until an action is available. A producer failure is returned
// as the error.
func (s *Source) Next(ctx context.Context) (Action, error) {
	select {
	case ev := <-s.events:
		if ev.Err != nil {
			return "", ev.Err
		}
		return ev.Action, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.quit:
		return "", ErrClosed
	}
}

// Close signals every producer and waits for all of them to exit.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.quit)
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	s.wg.Wait()
	return nil
}
