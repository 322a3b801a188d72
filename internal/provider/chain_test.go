package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
)

func nonEmpty(s string) bool { return s != "" }

func TestChainFirstUsableWins(t *testing.T) {
	ch := NewChain("test", zerolog.Nop(), nonEmpty,
		Stage[string, string]{Name: "a", Run: func(_ context.Context, in string) (string, error) {
			return "", errors.New("down")
		}},
		Stage[string, string]{Name: "b", Run: func(_ context.Context, in string) (string, error) {
			return "from-b:" + in, nil
		}},
		Stage[string, string]{Name: "c", Run: func(_ context.Context, in string) (string, error) {
			t.Fatal("stage after a usable result must not run")
			return "", nil
		}},
	)

	out, src, err := ch.Execute(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "from-b:x" {
		t.Errorf("out = %q, want %q", out, "from-b:x")
	}
	if src != "b" {
		t.Errorf("winning stage = %q, want b", src)
	}
}

func TestChainAllFailAggregates(t *testing.T) {
	fail := func(name string) Stage[string, string] {
		return Stage[string, string]{Name: name, Run: func(_ context.Context, _ string) (string, error) {
			return "", errors.New(name + " down")
		}}
	}
	ch := NewChain("test", zerolog.Nop(), nonEmpty, fail("a"), fail("b"))

	_, _, err := ch.Execute(context.Background(), "x")
	var agg *errs.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("want *errs.AggregateError, got %T: %v", err, err)
	}
	if len(agg.Stages) != 2 {
		t.Errorf("attempted stages = %v, want both", agg.Stages)
	}
	if agg.Last == nil {
		t.Error("aggregate must carry the last underlying error")
	}
}

func TestChainIsolatesPanics(t *testing.T) {
	ch := NewChain("test", zerolog.Nop(), nonEmpty,
		Stage[string, string]{Name: "panicky", Run: func(_ context.Context, _ string) (string, error) {
			panic("bad parse")
		}},
		Stage[string, string]{Name: "steady", Run: func(_ context.Context, _ string) (string, error) {
			return "ok", nil
		}},
	)

	out, src, err := ch.Execute(context.Background(), "x")
	if err != nil {
		t.Fatalf("panic must not propagate: %v", err)
	}
	if out != "ok" || src != "steady" {
		t.Errorf("got (%q, %q), want fallback to steady", out, src)
	}
}

func TestChainSkipsUnusableResults(t *testing.T) {
	ch := NewChain("test", zerolog.Nop(), nonEmpty,
		Stage[string, string]{Name: "empty", Run: func(_ context.Context, _ string) (string, error) {
			return "", nil
		}},
		Stage[string, string]{Name: "full", Run: func(_ context.Context, _ string) (string, error) {
			return "payload", nil
		}},
	)

	out, src, err := ch.Execute(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "payload" || src != "full" {
		t.Errorf("got (%q, %q), want the non-empty stage to win", out, src)
	}
}

func TestChainHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := NewChain("test", zerolog.Nop(), nonEmpty,
		Stage[string, string]{Name: "a", Run: func(_ context.Context, _ string) (string, error) {
			t.Fatal("stage must not run after cancellation")
			return "", nil
		}},
	)

	_, _, err := ch.Execute(ctx, "x")
	var agg *errs.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("want aggregate error, got %v", err)
	}
	if !errors.Is(agg.Last, context.Canceled) {
		t.Errorf("last error = %v, want context.Canceled", agg.Last)
	}
}
