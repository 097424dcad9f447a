// Package logging is the small event-reporting interface shared by
// rconn, pool, and subscribe, grounded on the teacher's
// redisconn/logger.go Report(event, conn, ...) shape, generalized from
// a *Connection-keyed receiver to an endpoint string so the Pool and
// Subscription Machine can share it without depending on rconn's
// concrete types.
package logging

import "log"

// Kind enumerates the lifecycle events worth reporting across the
// connection, pool, and subscription layers.
type Kind int

const (
	Connecting Kind = iota
	Connected
	ConnectFailed
	Disconnected
	PoolLeased
	PoolBorrowFailed
	PoolReleased
	PoolEvicted
	PoolExhausted
	PoolDrained
	SubscriptionStarted
	SubscriptionEnded
	LogMAX
)

// Logger receives one Report call per lifecycle event. v is
// event-specific; defaultLogger.Report below shows the positions each
// event uses, the way the teacher's defaultLogger.Report switch documents
// its own v[0]/v[1] positions.
type Logger interface {
	Report(event Kind, endpoint string, v ...interface{})
}

type defaultLogger struct{}

// NewDefaultLogger logs every event through the standard library logger.
func NewDefaultLogger() Logger { return defaultLogger{} }

func (defaultLogger) Report(event Kind, endpoint string, v ...interface{}) {
	switch event {
	case Connecting:
		log.Printf("redis: connecting to %s", endpoint)
	case Connected:
		log.Printf("redis: connected to %s", endpoint)
	case ConnectFailed:
		log.Printf("redis: connection to %s failed: %v", endpoint, firstOf(v))
	case Disconnected:
		log.Printf("redis: connection to %s broken: %v", endpoint, firstOf(v))
	case PoolLeased:
		log.Printf("redis: leased connection to %s after %v", endpoint, firstOf(v))
	case PoolBorrowFailed:
		log.Printf("redis: could not lease connection to %s after %v: %v", endpoint, arg(v, 0), arg(v, 1))
	case PoolReleased:
		log.Printf("redis: released connection to %s", endpoint)
	case PoolEvicted:
		log.Printf("redis: evicted idle connection to %s (idle %v)", endpoint, firstOf(v))
	case PoolExhausted:
		log.Printf("redis: pool for %s exhausted", endpoint)
	case PoolDrained:
		log.Printf("redis: pool for %s drained", endpoint)
	case SubscriptionStarted:
		log.Printf("redis: subscription to %s started", endpoint)
	case SubscriptionEnded:
		log.Printf("redis: subscription to %s ended: %v", endpoint, firstOf(v))
	default:
		args := []interface{}{"redis: unexpected event:", event, endpoint}
		args = append(args, v...)
		log.Print(args...)
	}
}

func firstOf(v []interface{}) interface{} {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func arg(v []interface{}, i int) interface{} {
	if i >= len(v) {
		return nil
	}
	return v[i]
}

type nilLogger struct{}

// NewNilLogger discards every event, named the way
// efritz-deepjoy/logging.go names its own nilLogger.
func NewNilLogger() Logger { return nilLogger{} }

func (nilLogger) Report(Kind, string, ...interface{}) {}
