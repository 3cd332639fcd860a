package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestRequestSnapshotTimesOutWithoutListener(t *testing.T) {
	b := NewSnapshotBroker()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := b.RequestSnapshot(ctx)
	if ok {
		t.Error("expected RequestSnapshot to fail with no listener")
	}
}

func TestRequestSnapshotSucceeds(t *testing.T) {
	b := NewSnapshotBroker()
	go func() {
		req := <-b.Requests()
		req.Reply <- SnapshotReply{Path: "/tmp/snap.bin", Ok: true}
	}()

	path, ok := b.RequestSnapshot(context.Background())
	if !ok {
		t.Fatal("expected RequestSnapshot to succeed")
	}
	if path != "/tmp/snap.bin" {
		t.Errorf("path = %q, want /tmp/snap.bin", path)
	}
}
