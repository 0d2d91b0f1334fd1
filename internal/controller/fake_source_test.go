package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/core/ports"
)

// fakeSource records every call so tests can assert on the exact requests
type fakeSource struct {
	runs    map[string]domain.ModelRun
	list    []domain.ModelRun
	listErr error
	getErr  error
	// gate, when set, blocks each call until a value is received
	gate chan struct{}

	mu      sync.Mutex
	gets    []string
	queries []ports.ListQuery
}

func newFakeSource() *fakeSource {
	return &fakeSource{runs: map[string]domain.ModelRun{}}
}

func (f *fakeSource) Resource() string { return "modelstatus" }

func (f *fakeSource) GetRun(ctx context.Context, id string) (domain.ModelRun, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	gate, err := f.gate, f.getErr
	run, ok := f.runs[id]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.ModelRun{}, err
	}
	if !ok {
		return domain.ModelRun{}, fmt.Errorf("lookup %s: %w", id, domain.ErrNotFound)
	}
	return run, nil
}

func (f *fakeSource) ListRuns(ctx context.Context, q ports.ListQuery) (domain.ResultSet, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate, err, list := f.gate, f.listErr, f.list
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.ResultSet{}, err
	}
	return domain.ResultSet{Runs: list, TotalCount: len(list)}, nil
}

func (f *fakeSource) calls() (gets []string, queries []ports.ListQuery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.gets...), append([]ports.ListQuery(nil), f.queries...)
}

func mustRun(id int) domain.ModelRun {
	run, err := domain.NewModelRun([]byte(fmt.Sprintf(`{"id": %d, "reference_time": "2023-01-01T00:00:00Z"}`, id)))
	if err != nil {
		panic(err)
	}
	return run
}

func runsUpTo(n int) []domain.ModelRun {
	out := make([]domain.ModelRun, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, mustRun(i))
	}
	return out
}
