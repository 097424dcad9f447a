package ops_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Griffin1989106/rpipe/ops"
	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/testbed"
)

type OpsSuite struct {
	suite.Suite
	srv testbed.Server
}

func (s *OpsSuite) SetupTest() {
	s.srv = testbed.Server{}
	s.Require().NoError(s.srv.Start())
}

func (s *OpsSuite) TearDownTest() {
	s.Require().NoError(s.srv.Stop())
}

func (s *OpsSuite) dial() *ops.Ops {
	core, err := rconn.Dial(s.srv.Addr(), rconn.Options{IOTimeout: time.Second})
	s.Require().NoError(err)
	return ops.New(core)
}

// TestServerErrorIsNotMisreportedAsProtocolError guards the typed
// conversion helpers against swallowing a genuine server Error reply:
// INCR on a non-numeric value must surface the server's verbatim
// message as KindServerError, not a fabricated protocol error.
func (s *OpsSuite) TestServerErrorIsNotMisreportedAsProtocolError() {
	o := s.dial()
	defer o.Core().Close()

	s.Require().NoError(o.Set("greeting", "hello"))

	_, err := o.Incr("greeting")
	s.Require().Error(err)
	s.True(rediserror.Is(err, rediserror.KindServerError))
	e, ok := rediserror.AsError(err)
	s.Require().True(ok)
	s.Contains(e.Error(), "not an integer")
}

func TestOps(t *testing.T) {
	suite.Run(t, new(OpsSuite))
}
