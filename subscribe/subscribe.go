// Package subscribe implements the Subscription Machine of spec §4.5: a
// Core dedicated to pub/sub, driven by a background reader goroutine
// that owns the transport's read side for the Core's entire lifetime.
//
// The reader loop is grounded on the teacher's redisconn/conn.go
// reader(r *bufio.Reader, one *oneconn) goroutine, which blocks in a
// tight Decode loop and routes each frame to per-connection state
// instead of resolving a future directly. Here the frame is routed to
// a Listener callback instead: push messages go to OnMessage/OnPMessage,
// subscribe/unsubscribe acks update the local channel/pattern
// bookkeeping rather than completing a caller's pending call.
package subscribe

import (
	"sync"

	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/resp"
)

// Listener receives push events from a Subscription's reader loop. All
// methods are called from the reader goroutine; implementations must not
// block for long or call back into the Subscription synchronously from
// within OnMessage and expect Close to proceed — use a buffered channel
// if downstream work may be slow.
type Listener interface {
	// OnMessage is called for a channel publish: SUBSCRIBE-style message.
	OnMessage(channel string, payload []byte)
	// OnPMessage is called for a pattern publish: PSUBSCRIBE-style pmessage.
	OnPMessage(pattern, channel string, payload []byte)
	// OnSubscribed is called once per channel/pattern acknowledgement,
	// reporting the server's running count of subscriptions.
	OnSubscribed(kind Kind, name string, count int64)
	// OnUnsubscribed mirrors OnSubscribed for unsubscribe acknowledgements.
	OnUnsubscribed(kind Kind, name string, count int64)
	// OnError is called when the reader loop terminates abnormally
	// (anything other than a clean, caller-requested unsubscribe-to-empty).
	OnError(err error)
}

// Kind distinguishes channel subscriptions from pattern subscriptions.
type Kind int

const (
	Channel Kind = iota
	Pattern
)

// Subscription is a Core dedicated to pub/sub for its entire lifetime.
// It owns the Core: on termination (both channel and pattern sets empty,
// or a fatal read error) the Core is closed and never returned to a Pool.
type Subscription struct {
	core     *rconn.Core
	listener Listener

	writeMu sync.Mutex // serializes SUBSCRIBE/UNSUBSCRIBE control writes

	mu       sync.Mutex // guards channels/patterns bookkeeping below
	channels map[string]bool
	patterns map[string]bool
	closing  bool // true once Close() has been called, suppresses OnError

	done chan struct{}
}

// New starts a Subscription Machine over core, which must be freshly
// dialed and in Normal mode. The reader goroutine starts immediately;
// it exits once both subscription sets become empty or the connection
// is lost.
func New(core *rconn.Core, listener Listener) (*Subscription, error) {
	if err := core.EnterSubscribed(); err != nil {
		return nil, err
	}
	s := &Subscription{
		core:     core,
		listener: listener,
		channels: make(map[string]bool),
		patterns: make(map[string]bool),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Subscribe adds channels, blocking only long enough to write the
// SUBSCRIBE command; the server's acknowledgement frames are consumed by
// the reader loop, not by this call, per spec §4.5.
func (s *Subscription) Subscribe(channels ...string) error {
	return s.sendControl("SUBSCRIBE", channels)
}

// PSubscribe adds patterns, mirroring Subscribe.
func (s *Subscription) PSubscribe(patterns ...string) error {
	return s.sendControl("PSUBSCRIBE", patterns)
}

// Unsubscribe drops channels (all of them, if none given, mirroring
// Redis's own UNSUBSCRIBE-with-no-args semantics).
func (s *Subscription) Unsubscribe(channels ...string) error {
	return s.sendControl("UNSUBSCRIBE", channels)
}

// PUnsubscribe drops patterns, mirroring Unsubscribe.
func (s *Subscription) PUnsubscribe(patterns ...string) error {
	return s.sendControl("PUNSUBSCRIBE", patterns)
}

func (s *Subscription) sendControl(name string, names []string) error {
	args := make([]interface{}, len(names))
	for i, n := range names {
		args[i] = n
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.core.SendRaw(resp.Command{Name: name, Args: args})
}

// Close marks the Subscription as closing, closes the Core, and waits for
// the reader loop to exit. It sends no UNSUBSCRIBE: closing the socket
// unblocks the reader's read with an error, and the closing flag keeps
// that error from being reported through OnError.
func (s *Subscription) Close() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	_ = s.core.Close()
	<-s.done
	return nil
}

// Alive reports whether the reader loop is still running.
func (s *Subscription) Alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Subscription) readLoop() {
	defer close(s.done)
	t := s.core.Transport()
	for {
		rep, err := t.ReadOne()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if !closing {
				s.listener.OnError(err)
			}
			_ = s.core.Close()
			return
		}
		if rep.Kind != resp.KindMultiBulk || rep.Null || len(rep.Items) == 0 {
			continue
		}
		kindItem := rep.Items[0]
		if kindItem.Kind != resp.KindBulkString {
			continue
		}
		frame := string(kindItem.Bytes)
		switch frame {
		case "message":
			if len(rep.Items) < 3 {
				continue
			}
			s.listener.OnMessage(string(rep.Items[1].Bytes), rep.Items[2].Bytes)
		case "pmessage":
			if len(rep.Items) < 4 {
				continue
			}
			s.listener.OnPMessage(string(rep.Items[1].Bytes), string(rep.Items[2].Bytes), rep.Items[3].Bytes)
		case "subscribe", "psubscribe":
			if len(rep.Items) < 3 {
				continue
			}
			name := string(rep.Items[1].Bytes)
			count := rep.Items[2].Integer
			kind := Channel
			if frame == "psubscribe" {
				kind = Pattern
			}
			s.recordSubscribed(kind, name)
			s.listener.OnSubscribed(kind, name, count)
		case "unsubscribe", "punsubscribe":
			if len(rep.Items) < 3 {
				continue
			}
			name := string(rep.Items[1].Bytes)
			count := rep.Items[2].Integer
			kind := Channel
			if frame == "punsubscribe" {
				kind = Pattern
			}
			empty := s.recordUnsubscribed(kind, name)
			s.listener.OnUnsubscribed(kind, name, count)
			if empty {
				_ = s.core.Close()
				return
			}
		}
	}
}

func (s *Subscription) recordSubscribed(kind Kind, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == Channel {
		s.channels[name] = true
	} else {
		s.patterns[name] = true
	}
}

// recordUnsubscribed removes name from its set and reports whether both
// sets are now empty, per spec §4.5 "When both sets become empty... the
// reader loop exits".
func (s *Subscription) recordUnsubscribed(kind Kind, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == Channel {
		delete(s.channels, name)
	} else {
		delete(s.patterns, name)
	}
	return len(s.channels) == 0 && len(s.patterns) == 0
}
