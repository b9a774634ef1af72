package observability

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestInitTracing_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracing(ctx, Config{ServiceName: "timeloop"})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	testutil.AssertEqual(t, "enabled", tp.Enabled(), false)

	_, span := tp.Tracer("test").Start(ctx, "noop")
	testutil.AssertEqual(t, "recording", span.IsRecording(), false)
	span.End()

	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestInitTracing_Enabled(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracing(ctx, Config{
		Enabled:     true,
		Endpoint:    "http://127.0.0.1:4318/v1/traces",
		ServiceName: "timeloop",
		Insecure:    true,
	})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	_, span := tp.Tracer("test").Start(ctx, "recorded")
	testutil.AssertEqual(t, "recording", span.IsRecording(), true)
	span.End()
}

func TestTracerProvider_Start(t *testing.T) {
	tp, err := InitTracing(context.Background(), Config{})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
}
