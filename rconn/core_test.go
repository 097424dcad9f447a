package rconn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
	"github.com/Griffin1989106/rpipe/testbed"
)

type CoreSuite struct {
	suite.Suite
	srv testbed.Server
}

func (s *CoreSuite) SetupTest() {
	s.srv = testbed.Server{}
	s.Require().NoError(s.srv.Start())
}

func (s *CoreSuite) TearDownTest() {
	s.Require().NoError(s.srv.Stop())
}

func (s *CoreSuite) dial() *rconn.Core {
	core, err := rconn.Dial(s.srv.Addr(), rconn.Options{IOTimeout: time.Second})
	s.Require().NoError(err)
	return core
}

// TestPipelineOrderPreserved exercises spec §8 property 2: a batch of
// pipelined commands comes back from ClosePipeline in submission order,
// one outcome per command.
func (s *CoreSuite) TestPipelineOrderPreserved() {
	core := s.dial()
	defer core.Close()

	s.Require().NoError(core.OpenPipeline())

	_, deferred, err := core.Dispatch(resp.NewCommand("SET", "k1", "v1"))
	s.Require().NoError(err)
	s.True(deferred)

	_, deferred, err = core.Dispatch(resp.NewCommand("SET", "k2", "v2"))
	s.Require().NoError(err)
	s.True(deferred)

	_, deferred, err = core.Dispatch(resp.NewCommand("GET", "k1"))
	s.Require().NoError(err)
	s.True(deferred)

	_, deferred, err = core.Dispatch(resp.NewCommand("GET", "k2"))
	s.Require().NoError(err)
	s.True(deferred)

	outcomes, err := core.ClosePipeline()
	s.Require().NoError(err)
	s.Require().Len(outcomes, 4)
	s.Equal("OK", outcomes[0].Reply.Str)
	s.Equal("OK", outcomes[1].Reply.Str)
	s.Equal("v1", string(outcomes[2].Reply.Bytes))
	s.Equal("v2", string(outcomes[3].Reply.Bytes))
	s.Equal(rconn.Normal, core.Mode())
}

// TestPipelinePartialErrorCarriesFullOutcomeList exercises spec §8
// scenario S3: one command in a pipelined batch fails server-side, and
// ClosePipeline returns KindPipelinePartial with every slot filled in
// order, not just the failing one.
func (s *CoreSuite) TestPipelinePartialErrorCarriesFullOutcomeList() {
	core := s.dial()
	defer core.Close()

	s.Require().NoError(core.OpenPipeline())

	_, _, err := core.Dispatch(resp.NewCommand("SET", "notanumber", "abc"))
	s.Require().NoError(err)
	_, _, err = core.Dispatch(resp.NewCommand("INCR", "notanumber"))
	s.Require().NoError(err)
	_, _, err = core.Dispatch(resp.NewCommand("GET", "notanumber"))
	s.Require().NoError(err)

	outcomes, err := core.ClosePipeline()
	s.Require().Error(err)
	s.True(rediserror.Is(err, rediserror.KindPipelinePartial))
	s.Require().Len(outcomes, 3)
	s.NoError(outcomes[0].Err)
	s.Error(outcomes[1].Err, "INCR on a non-integer value must surface the server's error, not be silently dropped")
	s.True(rediserror.Is(outcomes[1].Err, rediserror.KindServerError))
	s.NoError(outcomes[2].Err, "a command after the failing one still gets its own outcome slot")
	s.Equal("abc", string(outcomes[2].Reply.Bytes))
}

// TestTransactionCommitIsAtomic exercises spec §8 property 3: every
// queued command inside MULTI/EXEC lands, and EXEC's reply carries one
// outcome per queued command in order.
func (s *CoreSuite) TestTransactionCommitIsAtomic() {
	core := s.dial()
	defer core.Close()

	s.Require().NoError(core.Multi())
	s.Equal(rconn.Transaction, core.Mode())

	_, deferred, err := core.Dispatch(resp.NewCommand("SET", "ctr", "1"))
	s.Require().NoError(err)
	s.True(deferred)
	_, deferred, err = core.Dispatch(resp.NewCommand("INCR", "ctr"))
	s.Require().NoError(err)
	s.True(deferred)

	items, err := core.Exec()
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("OK", items[0].Str)
	s.Equal(int64(2), items[1].Integer)
	s.Equal(rconn.Normal, core.Mode())
}

// TestWatchAbortsOnConcurrentModification exercises spec §8 property 4 /
// scenario S2: a counter CAS where a second connection changes the
// watched key between WATCH and EXEC must abort with an empty, non-error
// result, never a partial commit.
func (s *CoreSuite) TestWatchAbortsOnConcurrentModification() {
	core := s.dial()
	defer core.Close()
	other := s.dial()
	defer other.Close()

	_, _, err := core.Dispatch(resp.NewCommand("SET", "ctr", "1"))
	s.Require().NoError(err)

	s.Require().NoError(core.Watch("ctr"))
	s.True(core.Watched())

	_, _, err = other.Dispatch(resp.NewCommand("SET", "ctr", "99"))
	s.Require().NoError(err)

	s.Require().NoError(core.Multi())
	_, deferred, err := core.Dispatch(resp.NewCommand("INCR", "ctr"))
	s.Require().NoError(err)
	s.True(deferred)

	items, err := core.Exec()
	s.Require().NoError(err, "a WATCH-aborted EXEC is an empty result, never an error")
	s.Empty(items)
	s.Equal(rconn.Normal, core.Mode())

	val, ok, err := func() ([]byte, bool, error) {
		rep, _, err := core.Dispatch(resp.NewCommand("GET", "ctr"))
		if err != nil {
			return nil, false, err
		}
		return rep.Bytes, !rep.Null, nil
	}()
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("99", string(val), "the aborted transaction must not have touched ctr")
}

// TestBlockingCommandRejectedInsideTransaction exercises spec §4.3's
// InvalidState row / scenario S4: a blocking command must never be
// queued inside MULTI, rejected entirely client-side before any wire
// I/O happens.
func (s *CoreSuite) TestBlockingCommandRejectedInsideTransaction() {
	core := s.dial()
	defer core.Close()

	s.Require().NoError(core.Multi())
	_, deferred, err := core.Dispatch(resp.NewCommand("BLPOP", "somelist", "0"))
	s.Require().Error(err)
	s.False(deferred)
	s.True(rediserror.Is(err, rediserror.KindInvalidState))

	// the transaction itself is left usable: a well-formed command still
	// queues fine and EXEC still works.
	_, deferred, err = core.Dispatch(resp.NewCommand("SET", "k", "v"))
	s.Require().NoError(err)
	s.True(deferred)
	_, err = core.Exec()
	s.Require().NoError(err)
}

// TestScriptKillRejectedInsideTransaction covers the same InvalidState
// row for SCRIPT KILL specifically, per spec §4.3.
func (s *CoreSuite) TestScriptKillRejectedInsideTransaction() {
	core := s.dial()
	defer core.Close()

	s.Require().NoError(core.Multi())
	_, deferred, err := core.Dispatch(resp.NewCommand("SCRIPT", "KILL"))
	s.Require().Error(err)
	s.False(deferred)
	s.True(rediserror.Is(err, rediserror.KindInvalidState))

	s.Require().NoError(core.Discard())
}

func TestCore(t *testing.T) {
	suite.Run(t, new(CoreSuite))
}
