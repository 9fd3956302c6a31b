package rate

import (
	"context"
	"testing"
	"time"
)

func TestPerProvider_Wait(t *testing.T) {
	p := NewPerProvider(1000, 10)
	ctx := context.Background()

	// Within the burst, waits return immediately.
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Wait(ctx, "virustotal"); err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst waits took %v", elapsed)
	}
}

func TestPerProvider_IndependentBuckets(t *testing.T) {
	p := NewPerProvider(0.001, 1)
	ctx := context.Background()

	// Drain one provider's bucket.
	if err := p.Wait(ctx, "shodan"); err != nil {
		t.Fatal(err)
	}

	// A different provider still has its full burst.
	done := make(chan error, 1)
	go func() { done <- p.Wait(ctx, "censys") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second provider should not share the first bucket")
	}
}

func TestPerProvider_CancelledContext(t *testing.T) {
	p := NewPerProvider(0.001, 1)
	ctx := context.Background()

	if err := p.Wait(ctx, "otx"); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := p.Wait(cancelled, "otx"); err == nil {
		t.Error("wait on a cancelled context must fail once the bucket is empty")
	}
}

func TestPerProvider_Defaults(t *testing.T) {
	p := NewPerProvider(0, 0)
	if err := p.Wait(context.Background(), "x"); err != nil {
		t.Errorf("defaulted limiter should admit the first call: %v", err)
	}
}
