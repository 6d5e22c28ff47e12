package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Every queued delivery is either sent or still pending after a flush, and
// the counts agree with what remains on disk.
func TestOutboxFlushConservesDeliveries(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		o := NewOutbox(t.TempDir()).(*fileOutbox)
		o.backoff = func(int) time.Duration { return 0 }

		n := rapid.IntRange(0, 15).Draw(rt, "n")
		fail := make(map[int]bool)
		for i := 0; i < n; i++ {
			fail[i] = rapid.Bool().Draw(rt, fmt.Sprintf("fail_%d", i))
			if err := o.Queue(fmt.Sprintf("k%d", i), i); err != nil {
				rt.Fatalf("Queue: %v", err)
			}
		}

		res, err := o.Flush(context.Background(), func(_ context.Context, d Delivery) error {
			var i int
			if _, err := fmt.Sscanf(d.Kind, "k%d", &i); err != nil {
				return err
			}
			if fail[i] {
				return errors.New("down")
			}
			return nil
		})
		if err != nil {
			rt.Fatalf("Flush: %v", err)
		}
		if res.Sent+res.Failed != n {
			rt.Fatalf("sent %d + failed %d != queued %d", res.Sent, res.Failed, n)
		}
		pending, err := o.Pending()
		if err != nil {
			rt.Fatalf("Pending: %v", err)
		}
		if len(pending) != res.Failed {
			rt.Fatalf("pending %d != failed %d", len(pending), res.Failed)
		}
	})
}
