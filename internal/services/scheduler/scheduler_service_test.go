package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/worker"
)

type fakeRunner struct {
	calls   int
	block   chan struct{}
	started chan struct{}
	lastReq analysis.Request
}

func (f *fakeRunner) Run(ctx context.Context, symbols []string, template analysis.Request) []worker.Outcome {
	f.calls++
	f.lastReq = template
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	out := make([]worker.Outcome, len(symbols))
	for i, s := range symbols {
		out[i].Symbol = s
		if s == "BAD" {
			out[i].Err = errors.New("boom")
		}
	}
	return out
}

func TestService_RunNow(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, "0 19 * * 1-5", []string{"TCS", "BAD", "INFY"}, analysis.Request{Years: 3}, arbor.NewLogger())

	outcomes, err := svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
	assert.Equal(t, 3, runner.lastReq.Years)

	st := svc.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, 2, st.LastAnalyzed)
	assert.Equal(t, 1, st.LastFailed)
	assert.Nil(t, st.NextRun)
}

func TestService_RunsDoNotOverlap(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	svc := NewService(runner, "0 19 * * *", []string{"TCS"}, analysis.Request{}, arbor.NewLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.RunNow(context.Background())
		assert.NoError(t, err)
	}()
	<-runner.started

	_, err := svc.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, svc.Status().Processing)

	close(runner.block)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
	assert.Equal(t, 1, runner.calls)
}

func TestService_StartStop(t *testing.T) {
	svc := NewService(&fakeRunner{}, "*/5 * * * *", []string{"TCS"}, analysis.Request{}, arbor.NewLogger())
	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start(), "second start is rejected")

	st := svc.Status()
	assert.True(t, st.Running)
	require.NotNil(t, st.NextRun)
	assert.True(t, st.NextRun.After(time.Now()))

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
	assert.False(t, svc.Status().Running)
}

func TestService_StartErrors(t *testing.T) {
	bad := NewService(&fakeRunner{}, "every day", []string{"TCS"}, analysis.Request{}, arbor.NewLogger())
	assert.Error(t, bad.Start())

	empty := NewService(&fakeRunner{}, "0 19 * * *", nil, analysis.Request{}, arbor.NewLogger())
	assert.Error(t, empty.Start())
}
