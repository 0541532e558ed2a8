package effkit

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/effkit/effkit/store"
	"github.com/effkit/effkit/trace"
)

func constant(v any) Resolver {
	return func(context.Context) (any, error) {
		return v, nil
	}
}

func TestTracerRecordsSites(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		a, err := Sample(ctx, "a", constant(1))
		if err != nil {
			return nil, err
		}
		b, err := Sample(ctx, "b", constant(2))
		if err != nil {
			return nil, err
		}
		return a.(int) + b.(int), nil
	})

	tr, err := tracer.GetTrace(context.Background(), "arg0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantNames := []string{trace.InputName, "a", "b", trace.ReturnName}
	if !reflect.DeepEqual(tr.Names(), wantNames) {
		t.Fatalf("unexpected node order: want %v, got %v", wantNames, tr.Names())
	}
	input, _ := tr.Node(trace.InputName)
	if !reflect.DeepEqual(input.Args, []any{"arg0"}) {
		t.Fatalf("unexpected input args: %v", input.Args)
	}
	ret, _ := tr.Node(trace.ReturnName)
	if ret.Value != 3 {
		t.Fatalf("unexpected return value: %v", ret.Value)
	}
	a, _ := tr.Node("a")
	if a.Type != trace.NodeSample || a.Value != 1 || a.IsObserved {
		t.Fatalf("unexpected sample node: %+v", a)
	}
}

func TestTracerDeterminism(t *testing.T) {
	t.Parallel()
	fn := func(ctx context.Context, args ...any) (any, error) {
		if _, err := Sample(ctx, "a", constant(1)); err != nil {
			return nil, err
		}
		if _, err := Sample(ctx, "b", constant(2)); err != nil {
			return nil, err
		}
		return nil, nil
	}
	tracer := NewTracer(fn, WithGraphType(trace.GraphDense))

	first, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Fatalf("node sets differ: %v vs %v", first.Names(), second.Names())
	}
	if !reflect.DeepEqual(first.Edges(), second.Edges()) {
		t.Fatalf("edge sets differ: %v vs %v", first.Edges(), second.Edges())
	}
}

func TestDuplicateSites(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   Computation
	}{
		{
			name: "sample after sample",
			fn: func(ctx context.Context, args ...any) (any, error) {
				if _, err := Sample(ctx, "x", constant(1)); err != nil {
					return nil, err
				}
				return Sample(ctx, "x", constant(2))
			},
		},
		{
			name: "param after sample",
			fn: func(ctx context.Context, args ...any) (any, error) {
				if _, err := Sample(ctx, "x", constant(1)); err != nil {
					return nil, err
				}
				return Param(ctx, "x", constant(2))
			},
		},
		{
			name: "sample after param",
			fn: func(ctx context.Context, args ...any) (any, error) {
				if _, err := Param(ctx, "x", constant(1)); err != nil {
					return nil, err
				}
				return Sample(ctx, "x", constant(2))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := store.NewContext(context.Background(), store.NewInMemory())
			_, err := NewTracer(tt.fn).Invoke(ctx)
			if !errors.Is(err, ErrDuplicateSite) {
				t.Fatalf("expected ErrDuplicateSite, got %v", err)
			}
		})
	}
}

func TestDuplicateSiteCleansUpStack(t *testing.T) {
	t.Parallel()
	var observed *Stack
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		observed, _ = FromStackContext(ctx)
		if _, err := Sample(ctx, "x", constant(1)); err != nil {
			return nil, err
		}
		return Sample(ctx, "x", constant(2))
	})
	if _, err := tracer.Invoke(context.Background()); !errors.Is(err, ErrDuplicateSite) {
		t.Fatalf("expected ErrDuplicateSite, got %v", err)
	}
	if observed.Len() != 0 {
		t.Fatalf("expected stack restored after failure, got %d handlers", observed.Len())
	}
}

func TestTraceCopyIsolation(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		return Sample(ctx, "a", constant(args[0]))
	})
	first, err := tracer.GetTrace(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A later invocation resets the live trace; the earlier copy keeps its
	// nodes and edges.
	if _, err := tracer.GetTrace(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := first.Node("a")
	if !ok || a.Value != 1 {
		t.Fatalf("expected earlier copy to keep value 1, got %+v", a)
	}
	if first.Len() != 3 {
		t.Fatalf("expected 3 nodes in earlier copy, got %d", first.Len())
	}
}

func TestObservedSample(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		return Sample(ctx, "obs", func(context.Context) (any, error) {
			t.Fatal("resolver must not run for an observed site")
			return nil, nil
		}, Observed(9))
	})
	tr, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	node, _ := tr.Node("obs")
	if node.Value != 9 || !node.IsObserved {
		t.Fatalf("expected observed node with value 9, got %+v", node)
	}
}

func TestSampleOutsideScope(t *testing.T) {
	t.Parallel()
	got, err := Sample(context.Background(), "free", constant("v"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected resolver value, got %v", got)
	}
}

func TestFramesRecorded(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		for i := 0; i < 2; i++ {
			plated := WithFrame(ctx, "plate", i)
			if _, err := Sample(plated, nodeName("x", i), constant(i)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	tr, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		node, _ := tr.Node(nodeName("x", i))
		want := []trace.Frame{{Name: "plate", Counter: i}}
		if !reflect.DeepEqual(node.CondIndepStack, want) {
			t.Fatalf("unexpected frames on %s: want %v, got %v", node.Name, want, node.CondIndepStack)
		}
	}
}

func nodeName(prefix string, i int) string {
	return prefix + "@" + string(rune('0'+i))
}

func TestDenseEdgesThroughTracer(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		for i := 0; i < 2; i++ {
			plated := WithFrame(ctx, "plate", i)
			if _, err := Sample(plated, nodeName("x", i), constant(i)); err != nil {
				return nil, err
			}
		}
		return Sample(ctx, "y", constant(0))
	}, WithGraphType(trace.GraphDense))

	tr, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Different replicates of the same plate are independent.
	if tr.HasEdge(nodeName("x", 0), nodeName("x", 1)) {
		t.Fatal("expected no edge between plate replicates")
	}
	// A site sharing no context with the replicates depends on both.
	for i := 0; i < 2; i++ {
		if !tr.HasEdge(nodeName("x", i), "y") {
			t.Fatalf("expected edge %s -> y", nodeName("x", i))
		}
	}
}

func TestFlatTraceHasNoEdges(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		if _, err := Sample(ctx, "a", constant(1)); err != nil {
			return nil, err
		}
		return Sample(ctx, "b", constant(2))
	})
	tr, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Edges()) != 0 {
		t.Fatalf("expected no edges in flat trace, got %v", tr.Edges())
	}
}

func TestSubsampleSitesSkipped(t *testing.T) {
	t.Parallel()
	tracer := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		if _, err := Sample(ctx, "a", constant(1)); err != nil {
			return nil, err
		}
		if _, err := Sample(ctx, "idx", constant([]int{0, 1}), AsSubsample()); err != nil {
			return nil, err
		}
		return Sample(ctx, "b", constant(2))
	}, WithGraphType(trace.GraphDense))

	tr, err := tracer.GetTrace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The interposed pseudo-site does not block the edge between the
	// ordinary sites and never touches an edge itself.
	if !tr.HasEdge("a", "b") {
		t.Fatal("expected edge a -> b across the subsample site")
	}
	for _, edge := range tr.Edges() {
		if edge.From == "idx" || edge.To == "idx" {
			t.Fatalf("subsample site must not participate in edges, got %+v", edge)
		}
	}
	node, _ := tr.Node("idx")
	if node.Type != trace.NodeSubsample {
		t.Fatalf("expected subsample node type, got %s", node.Type)
	}
}

func TestParamGetOrCreate(t *testing.T) {
	t.Parallel()
	inits := 0
	fn := func(ctx context.Context, args ...any) (any, error) {
		return Param(ctx, "weight", func(context.Context) (any, error) {
			inits++
			return 0.5, nil
		})
	}
	ctx := store.NewContext(context.Background(), store.NewInMemory())
	tracer := NewTracer(fn)

	first, err := tracer.Invoke(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tracer.Invoke(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 0.5 || second != 0.5 {
		t.Fatalf("unexpected param values: %v, %v", first, second)
	}
	if inits != 1 {
		t.Fatalf("expected init to run once, ran %d times", inits)
	}
	tr := tracer.Recorder().Trace()
	node, _ := tr.Node("weight")
	if node.Type != trace.NodeParam {
		t.Fatalf("expected param node type, got %s", node.Type)
	}
}

func TestParamWithoutStore(t *testing.T) {
	t.Parallel()
	_, err := NewTracer(func(ctx context.Context, args ...any) (any, error) {
		return Param(ctx, "w", nil)
	}).Invoke(context.Background())
	if !errors.Is(err, ErrNoParamStore) {
		t.Fatalf("expected ErrNoParamStore, got %v", err)
	}
}

func TestCollectTraces(t *testing.T) {
	t.Parallel()
	fn := func(ctx context.Context, args ...any) (any, error) {
		if _, err := Sample(ctx, "a", constant(1)); err != nil {
			return nil, err
		}
		return Sample(ctx, "b", constant(2))
	}
	traces, err := CollectTraces(context.Background(), 4, fn, WithGraphType(trace.GraphDense))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(traces) != 4 {
		t.Fatalf("expected 4 traces, got %d", len(traces))
	}
	want := []string{trace.InputName, "a", "b", trace.ReturnName}
	for i, tr := range traces {
		if !reflect.DeepEqual(tr.Names(), want) {
			t.Fatalf("trace %d: unexpected node order %v", i, tr.Names())
		}
		if !tr.HasEdge("a", "b") {
			t.Fatalf("trace %d: expected edge a -> b", i)
		}
	}
}
