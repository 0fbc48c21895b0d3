package loader

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	m := newTestModules()
	m.value("a", 1)
	r := newTestRegistry(t, m, Config{})
	if _, err := r.Load(context.Background(), "a", nil); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if logs.FilterMessage("module loaded").Len() != 1 {
		t.Errorf("expected one load entry, got %v", logs.All())
	}

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("nil logger must restore the no-op logger")
	}
}

func TestSetLogger_Concurrent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					SetLogger(zap.NewNop())
				} else {
					Logger().Debug("concurrent")
				}
			}
		}()
	}
	wg.Wait()
}
