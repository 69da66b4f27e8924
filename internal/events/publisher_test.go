package events

import (
	"context"
	"testing"
	"time"
)

func TestPublishContextOutlivesCaller(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := publishContext(parent)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
		t.Fatal("publish context cancelled together with the request")
	default:
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("publish context has no deadline")
	}
	if d := time.Until(deadline); d <= 0 || d > defaultPublishTTL {
		t.Errorf("deadline in %v, want within %v", d, defaultPublishTTL)
	}
}

func TestPublishContextIgnoresCallerDeadline(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancelParent()
	<-parent.Done()

	ctx, cancel := publishContext(parent)
	defer cancel()
	if err := ctx.Err(); err != nil {
		t.Fatalf("expired caller deadline leaked into publish: %v", err)
	}

	cancel()
	if ctx.Err() != context.Canceled {
		t.Errorf("cancel did not stop the publish context: %v", ctx.Err())
	}
}

func TestNoopDropsEvents(t *testing.T) {
	if err := (Noop{}).PublishStatusChanged(context.Background(), StatusChanged{TrackingID: "RB-7K2QX"}); err != nil {
		t.Fatalf("Noop: %v", err)
	}
}
