package subscribe_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/resp"
	"github.com/Griffin1989106/rpipe/subscribe"
	"github.com/Griffin1989106/rpipe/testbed"
)

type recordingListener struct {
	mu          sync.Mutex
	messages    []string
	pmessages   []string
	subscribed  []string
	unsubs      []string
	errs        []error
	messageCond *sync.Cond
}

func newRecordingListener() *recordingListener {
	l := &recordingListener{}
	l.messageCond = sync.NewCond(&l.mu)
	return l
}

func (l *recordingListener) OnMessage(channel string, payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, channel+":"+string(payload))
	l.messageCond.Broadcast()
}

func (l *recordingListener) OnPMessage(pattern, channel string, payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pmessages = append(l.pmessages, pattern+":"+channel+":"+string(payload))
	l.messageCond.Broadcast()
}

func (l *recordingListener) OnSubscribed(kind subscribe.Kind, name string, count int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribed = append(l.subscribed, name)
	l.messageCond.Broadcast()
}

func (l *recordingListener) OnUnsubscribed(kind subscribe.Kind, name string, count int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unsubs = append(l.unsubs, name)
	l.messageCond.Broadcast()
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
	l.messageCond.Broadcast()
}

func (l *recordingListener) waitFor(check func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	l.mu.Lock()
	defer l.mu.Unlock()
	for !check() {
		if time.Now().After(deadline) {
			return false
		}
		waitCh := make(chan struct{})
		go func() {
			time.Sleep(10 * time.Millisecond)
			close(waitCh)
		}()
		l.mu.Unlock()
		<-waitCh
		l.mu.Lock()
	}
	return true
}

type SubscribeSuite struct {
	suite.Suite
	srv testbed.Server
}

func (s *SubscribeSuite) SetupTest() {
	s.srv = testbed.Server{}
	s.Require().NoError(s.srv.Start())
}

func (s *SubscribeSuite) TearDownTest() {
	s.Require().NoError(s.srv.Stop())
}

func (s *SubscribeSuite) dial() *rconn.Core {
	core, err := rconn.Dial(s.srv.Addr(), rconn.Options{IOTimeout: time.Second})
	s.Require().NoError(err)
	return core
}

func (s *SubscribeSuite) TestSubscribeReceivesMessage() {
	core := s.dial()
	listener := newRecordingListener()
	sub, err := subscribe.New(core, listener)
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(sub.Subscribe("news"))
	s.Require().True(listener.waitFor(func() bool { return len(listener.subscribed) == 1 }, time.Second))

	pub := s.dial()
	defer pub.Close()
	_, _, err = pub.Dispatch(resp.NewCommand("PUBLISH", "news", "hello"))
	s.Require().NoError(err)

	s.Require().True(listener.waitFor(func() bool { return len(listener.messages) == 1 }, time.Second))
	s.Equal("news:hello", listener.messages[0])
}

func (s *SubscribeSuite) TestPSubscribeReceivesPMessage() {
	core := s.dial()
	listener := newRecordingListener()
	sub, err := subscribe.New(core, listener)
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(sub.PSubscribe("news.*"))
	s.Require().True(listener.waitFor(func() bool { return len(listener.subscribed) == 1 }, time.Second))

	pub := s.dial()
	defer pub.Close()
	_, _, err = pub.Dispatch(resp.NewCommand("PUBLISH", "news.sports", "score"))
	s.Require().NoError(err)

	s.Require().True(listener.waitFor(func() bool { return len(listener.pmessages) == 1 }, time.Second))
	s.Equal("news.*:news.sports:score", listener.pmessages[0])
}

func (s *SubscribeSuite) TestUnsubscribeToEmptyClosesCore() {
	core := s.dial()
	listener := newRecordingListener()
	sub, err := subscribe.New(core, listener)
	s.Require().NoError(err)

	s.Require().NoError(sub.Subscribe("a"))
	s.Require().True(listener.waitFor(func() bool { return len(listener.subscribed) == 1 }, time.Second))

	s.Require().NoError(sub.Unsubscribe("a"))
	s.Require().True(listener.waitFor(func() bool { return len(listener.unsubs) == 1 }, time.Second))

	deadline := time.Now().Add(time.Second)
	for sub.Alive() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.False(sub.Alive())
	s.True(core.Closed())
}

func (s *SubscribeSuite) TestCloseTerminatesWithoutError() {
	core := s.dial()
	listener := newRecordingListener()
	sub, err := subscribe.New(core, listener)
	s.Require().NoError(err)

	s.Require().NoError(sub.Subscribe("x"))
	s.Require().True(listener.waitFor(func() bool { return len(listener.subscribed) == 1 }, time.Second))

	s.Require().NoError(sub.Close())
	s.False(sub.Alive())

	listener.mu.Lock()
	defer listener.mu.Unlock()
	s.Empty(listener.errs, "an intentional Close should not surface as OnError")
}

func TestSubscribe(t *testing.T) {
	suite.Run(t, new(SubscribeSuite))
}
