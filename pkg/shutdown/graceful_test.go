package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

func TestStopRunsEveryComponentInOrder(t *testing.T) {
	var order []string
	step := func(name string, err error) Stoppable {
		return StopFunc(func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("%s: shutdown context has no deadline", name)
			}
			order = append(order, name)
			return err
		})
	}

	Stop(time.Second, logging.NewNop(),
		step("http", errors.New("busy")),
		step("cache", nil),
		step("graph", nil),
	)

	want := []string{"http", "cache", "graph"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
