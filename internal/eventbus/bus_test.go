package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type guildCreated struct{ Name string }
type guildDisbanded struct{ Name string }

func TestPublishInvokesSubscriberOnce(t *testing.T) {
	b := New(Config{})
	calls := 0
	Subscribe(b, func(e guildCreated) {
		calls++
		if e.Name != "Knights" {
			t.Fatalf("unexpected payload %+v", e)
		}
	})
	b.Publish(guildCreated{Name: "Knights"})
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestUnsubscribeBeforePublish(t *testing.T) {
	b := New(Config{})
	calls := 0
	sub := Subscribe(b, func(guildCreated) { calls++ })
	b.Unsubscribe(sub)
	b.Unsubscribe(sub) // no-op
	b.Publish(guildCreated{})
	if calls != 0 {
		t.Fatalf("calls=%d want 0", calls)
	}
	if n := ListenerCountOf[guildCreated](b); n != 0 {
		t.Fatalf("listener count=%d want 0", n)
	}
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	b := New(Config{})
	before := testutil.ToFloat64(listenerFailures.WithLabelValues("eventbus.guildCreated"))
	second := false
	Subscribe(b, func(guildCreated) { panic("bad listener") })
	Subscribe(b, func(guildCreated) { second = true })
	b.Publish(guildCreated{})
	if !second {
		t.Fatalf("second listener was not invoked")
	}
	if got := testutil.ToFloat64(listenerFailures.WithLabelValues("eventbus.guildCreated")) - before; got != 1 {
		t.Fatalf("failure counter delta=%v want 1", got)
	}
}

func TestSubscriptionOrderAndExactType(t *testing.T) {
	b := New(Config{})
	var order []int
	Subscribe(b, func(guildCreated) { order = append(order, 1) })
	Subscribe(b, func(guildCreated) { order = append(order, 2) })
	Subscribe(b, func(*guildCreated) { order = append(order, 99) })
	Subscribe(b, func(guildDisbanded) { order = append(order, 100) })
	b.Publish(guildCreated{})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order=%v want [1 2]", order)
	}
}

func TestDuplicateRegistrationInvokesTwice(t *testing.T) {
	b := New(Config{})
	calls := 0
	fn := func(guildCreated) { calls++ }
	Subscribe(b, fn)
	Subscribe(b, fn)
	b.Publish(guildCreated{})
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func TestCountsAndClear(t *testing.T) {
	b := New(Config{})
	Subscribe(b, func(guildCreated) {})
	Subscribe(b, func(guildCreated) {})
	Subscribe(b, func(guildDisbanded) {})
	if got := b.TotalListenerCount(); got != 3 {
		t.Fatalf("total=%d want 3", got)
	}
	counts := b.Counts()
	if counts["eventbus.guildCreated"] != 2 || counts["eventbus.guildDisbanded"] != 1 {
		t.Fatalf("counts=%v", counts)
	}
	b.Clear()
	if got := b.TotalListenerCount(); got != 0 {
		t.Fatalf("total after clear=%d", got)
	}
}

func TestPublishAsync(t *testing.T) {
	b := New(Config{})
	var calls atomic.Int32
	Subscribe(b, func(guildCreated) { calls.Add(1) })
	b.PublishAsync(guildCreated{})
	b.PublishAsync(guildCreated{})
	b.Wait()
	if calls.Load() != 2 {
		t.Fatalf("calls=%d want 2", calls.Load())
	}
}

func TestCloseWaitsThenClears(t *testing.T) {
	b := New(Config{})
	release := make(chan struct{})
	var calls atomic.Int32
	Subscribe(b, func(guildCreated) {
		<-release
		calls.Add(1)
	})
	b.PublishAsync(guildCreated{})

	errc := make(chan error, 1)
	go func() { errc <- b.Close(context.Background()) }()
	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("close: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("in-flight publication not awaited: calls=%d", calls.Load())
	}
	if n := b.TotalListenerCount(); n != 0 {
		t.Fatalf("listeners after close=%d", n)
	}
}

func TestCloseTimesOutButClears(t *testing.T) {
	b := New(Config{})
	release := make(chan struct{})
	defer close(release)
	Subscribe(b, func(guildCreated) { <-release })
	b.PublishAsync(guildCreated{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("close err=%v, want deadline exceeded", err)
	}
	if n := b.TotalListenerCount(); n != 0 {
		t.Fatalf("listeners after close=%d", n)
	}
}

func TestPublishAsyncAfterCloseRunsInline(t *testing.T) {
	b := New(Config{})
	if err := b.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	calls := 0
	Subscribe(b, func(guildCreated) { calls++ })
	b.PublishAsync(guildCreated{})
	if calls != 1 {
		t.Fatalf("calls=%d want 1 on the caller", calls)
	}
}

func TestPublishAsyncRacingClose(t *testing.T) {
	b := New(Config{})
	var calls atomic.Int32
	Subscribe(b, func(guildCreated) { calls.Add(1) })
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.PublishAsync(guildCreated{})
			}
		}()
	}
	if err := b.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
	b.Wait()
	if n := calls.Load(); n > 400 {
		t.Fatalf("calls=%d exceeds publications", n)
	}
	if n := b.TotalListenerCount(); n != 0 {
		t.Fatalf("listeners after close=%d", n)
	}
}

func TestSubscribeDuringPublishUsesSnapshot(t *testing.T) {
	b := New(Config{})
	late := 0
	Subscribe(b, func(guildCreated) {
		Subscribe(b, func(guildCreated) { late++ })
	})
	b.Publish(guildCreated{})
	if late != 0 {
		t.Fatalf("listener added mid-publication ran in the same publication")
	}
	b.Publish(guildCreated{})
	if late != 1 {
		t.Fatalf("late=%d want 1", late)
	}
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	b := New(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := Subscribe(b, func(guildCreated) {})
				b.Unsubscribe(sub)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(guildCreated{})
			}
		}()
	}
	wg.Wait()
	if n := b.TotalListenerCount(); n != 0 {
		t.Fatalf("leaked listeners: %d", n)
	}
}
