package dotlayer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSignalFrames(t *testing.T) {
	f := NewSignalFrames()
	t1 := time.Unix(1, 0)
	if !f.Signal(t1) {
		t.Fatal("first Signal was dropped")
	}
	if f.Signal(t1.Add(time.Second)) {
		t.Error("Signal while one is pending should be dropped")
	}
	got, err := f.NextFrame(context.Background())
	if err != nil || !got.Equal(t1) {
		t.Errorf("NextFrame() = %v, %v; want %v", got, err, t1)
	}
}

func TestSignalFramesCancel(t *testing.T) {
	f := NewSignalFrames()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.NextFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("NextFrame() error = %v, want context.Canceled", err)
	}
}

func TestTickerFrames(t *testing.T) {
	f := NewTickerFrames(1000)
	defer f.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := f.NextFrame(ctx); err != nil {
		t.Fatalf("NextFrame() = %v", err)
	}
}
