package rpipe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Griffin1989106/rpipe"
	"github.com/Griffin1989106/rpipe/ops"
	"github.com/Griffin1989106/rpipe/pool"
	"github.com/Griffin1989106/rpipe/subscribe"
	"github.com/Griffin1989106/rpipe/testbed"
)

type ClientSuite struct {
	suite.Suite
	srv testbed.Server
}

func (s *ClientSuite) SetupTest() {
	s.srv = testbed.Server{}
	s.Require().NoError(s.srv.Start())
}

func (s *ClientSuite) TearDownTest() {
	s.Require().NoError(s.srv.Stop())
}

func (s *ClientSuite) client() *rpipe.Client {
	return rpipe.New(s.srv.Addr(), pool.WithIOTimeout(time.Second))
}

func (s *ClientSuite) TestDoRunsCommandAndReleasesCore() {
	c := s.client()
	defer c.Close()

	err := c.Do(context.Background(), func(o *ops.Ops) error {
		return o.Set("key", "value")
	})
	s.Require().NoError(err)

	var got []byte
	err = c.Do(context.Background(), func(o *ops.Ops) error {
		v, ok, err := o.Get("key")
		got = v
		s.True(ok)
		return err
	})
	s.Require().NoError(err)
	s.Equal("value", string(got))
}

func (s *ClientSuite) TestCloseDrainsPool() {
	c := s.client()
	err := c.Do(context.Background(), func(o *ops.Ops) error {
		return o.Set("key", "value")
	})
	s.Require().NoError(err)

	c.Close()

	err = c.Do(context.Background(), func(o *ops.Ops) error {
		return o.Set("key2", "value2")
	})
	s.Error(err, "leasing after Close should fail: the pool is draining")
}

type recordingListener struct {
	received chan string
}

func (l *recordingListener) OnMessage(channel string, payload []byte) {
	l.received <- string(payload)
}
func (l *recordingListener) OnPMessage(pattern, channel string, payload []byte) {}
func (l *recordingListener) OnSubscribed(kind subscribe.Kind, name string, count int64) {
}
func (l *recordingListener) OnUnsubscribed(kind subscribe.Kind, name string, count int64) {}
func (l *recordingListener) OnError(err error)                                           {}

func (s *ClientSuite) TestSubscribeUsesDedicatedConnection() {
	c := s.client()
	defer c.Close()

	listener := &recordingListener{received: make(chan string, 1)}
	sub, err := c.Subscribe(listener)
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(sub.Subscribe("news"))

	err = c.Do(context.Background(), func(o *ops.Ops) error {
		_, err := o.Publish("news", "hello")
		return err
	})
	s.Require().NoError(err)

	select {
	case msg := <-listener.received:
		s.Equal("hello", msg)
	case <-time.After(time.Second):
		s.Fail("timed out waiting for published message")
	}
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}
