package rpipe_test

import (
	"context"
	"fmt"
	"log"

	"github.com/Griffin1989106/rpipe"
	"github.com/Griffin1989106/rpipe/ops"
	"github.com/Griffin1989106/rpipe/pool"
	"github.com/Griffin1989106/rpipe/subscribe"
)

// Example_usage is illustrative only (no Output comment): running it
// requires a real server at 127.0.0.1:6379, which this module's test
// suite replaces with the in-process testbed package elsewhere.
func Example_usage() {
	ctx := context.Background()

	client := rpipe.New("127.0.0.1:6379",
		pool.WithPassword(""),
		pool.WithPoolCapacity(10),
		pool.WithHealthCheck(true),
	)
	defer client.Close()

	err := client.Do(ctx, func(o *ops.Ops) error {
		if err := o.Set("key", "ho"); err != nil {
			return err
		}
		val, _, err := o.Get("key")
		if err != nil {
			return err
		}
		fmt.Printf("result: %q\n", val)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	err = client.Do(ctx, func(o *ops.Ops) error {
		if err := o.HMSet("hashkey", map[string]interface{}{"field1": "val1", "field2": "val2"}); err != nil {
			return err
		}
		vals, err := o.HMGet("hashkey", "field1", "field2", "field3")
		if err != nil {
			return err
		}
		for i, v := range vals {
			fmt.Printf("%d: %q\n", i, v)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// A pipelined batch: commands are written as they are enqueued and
	// their replies collected positionally by ClosePipeline.
	err = client.Do(ctx, func(o *ops.Ops) error {
		core := o.Core()
		if err := core.OpenPipeline(); err != nil {
			return err
		}
		_, _, _ = o.Get("key")
		_, _ = o.Incr("counter")
		outcomes, err := core.ClosePipeline()
		if err != nil {
			return err
		}
		for i, out := range outcomes {
			fmt.Printf("outcome[%d]: %+v\n", i, out.Reply)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// A server-side transaction with optimistic locking.
	err = client.Do(ctx, func(o *ops.Ops) error {
		core := o.Core()
		if err := core.Watch("a{x}", "b{x}"); err != nil {
			return err
		}
		if err := core.Multi(); err != nil {
			return err
		}
		_ = o.Set("a{x}", "b")
		_, _ = o.IncrBy("b{x}", 3)
		results, err := core.Exec()
		if err != nil {
			return err
		}
		for i, res := range results {
			fmt.Printf("tresult[%d]: %+v\n", i, res)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// Pub/sub runs on a dedicated connection outside the Pool.
	listener := &printListener{}
	sub, err := client.Subscribe(listener)
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Close()
	if err := sub.Subscribe("news"); err != nil {
		log.Fatal(err)
	}
}

type printListener struct{}

func (printListener) OnMessage(channel string, payload []byte) {
	fmt.Printf("message on %s: %q\n", channel, payload)
}
func (printListener) OnPMessage(pattern, channel string, payload []byte) {
	fmt.Printf("pmessage on %s (%s): %q\n", channel, pattern, payload)
}
func (printListener) OnSubscribed(kind subscribe.Kind, name string, count int64)   {}
func (printListener) OnUnsubscribed(kind subscribe.Kind, name string, count int64) {}
func (printListener) OnError(err error)                                           {}
