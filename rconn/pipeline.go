package rconn

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Outcome is one positional result from a flushed pipeline: either a
// decoded reply or the error that occupies that slot, per spec §4.4
// "Pipeline flush" and §7 "PipelinePartial always carries the full
// ordered outcome list".
type Outcome struct {
	Reply resp.Reply
	Err   error
}

// OpenPipeline transitions Normal -> Pipeline or Transaction ->
// Pipeline+Transaction, per spec §4.4.
func (c *Core) OpenPipeline() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rediserror.New(rediserror.KindConnectionLost, "open pipeline on closed connection")
	}
	switch c.mode {
	case Normal:
		c.mode = Pipeline
	case Transaction:
		c.mode = PipelineTransaction
	case Pipeline, PipelineTransaction:
		// idempotent: already pipelining
	default:
		return rediserror.New(rediserror.KindUnsupported, "cannot open pipeline in mode "+c.mode.String())
	}
	return nil
}

// ClosePipeline flushes the buffer: reads exactly one reply per pending
// record, in submission order, and returns to Normal (from Pipeline) or
// Transaction (from Pipeline+Transaction).
//
// Queued-transaction acks (QUEUED replies recorded between MULTI and an
// eventual EXEC that hasn't run yet) are read and discarded here, never
// surfaced as outcomes — per spec §9's fixed semantics: only EXEC's
// result is authoritative. If any non-queued reply is a server Error, it
// is mapped to ServerError and the whole call returns PipelinePartial
// carrying the complete ordered outcome list. A transport failure
// mid-flush fills the remaining slots with ConnectionLost and likewise
// raises PipelinePartial.
func (c *Core) ClosePipeline() ([]Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, rediserror.New(rediserror.KindConnectionLost, "close pipeline on closed connection")
	}
	if c.mode != Pipeline && c.mode != PipelineTransaction {
		c.mu.Unlock()
		return nil, rediserror.New(rediserror.KindUnsupported, "close pipeline while not pipelining")
	}
	pending := c.pending
	c.pending = nil
	nextMode := Normal
	if c.mode == PipelineTransaction {
		nextMode = Transaction
	}
	c.mu.Unlock()

	outcomes := make([]Outcome, 0, len(pending))
	hadError := false
	ioFailed := false

	for _, rec := range pending {
		if ioFailed {
			outcomes = append(outcomes, Outcome{Err: rediserror.New(rediserror.KindConnectionLost, "connection lost mid-flush")})
			hadError = true
			continue
		}
		rep, err := c.t.ReadOne()
		if err != nil {
			ioFailed = true
			hadError = true
			outcomes = append(outcomes, Outcome{Err: err})
			continue
		}
		if rec.queued {
			// discard QUEUED ack; EXEC's own reply carries the real outcome
			continue
		}
		if rep.IsError() {
			hadError = true
			outcomes = append(outcomes, Outcome{Reply: rep, Err: rediserror.New(rediserror.KindServerError, rep.ErrMsg)})
			continue
		}
		outcomes = append(outcomes, Outcome{Reply: rep})
	}

	c.mu.Lock()
	if ioFailed {
		c.closeLocked()
	} else {
		c.mode = nextMode
	}
	c.mu.Unlock()

	if hadError {
		return outcomes, rediserror.New(rediserror.KindPipelinePartial, "one or more pipelined commands failed").
			WithProperty(rediserror.POutcomes, outcomes)
	}
	return outcomes, nil
}
