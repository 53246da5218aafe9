package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	mu      sync.Mutex
	runs    int
	release chan struct{}
}

func (j *fakeJob) Name() string { return "fake" }
func (j *fakeJob) Spec() string { return "* * * * *" }

func (j *fakeJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	if j.release != nil {
		<-j.release
	}
	return nil
}

func (j *fakeJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestOverlappingTickSkipped(t *testing.T) {
	s := NewCronScheduler()
	j := &fakeJob{release: make(chan struct{})}
	tick := s.wrap(j)

	done := make(chan struct{})
	go func() {
		tick()
		close(done)
	}()
	require.Eventually(t, func() bool { return j.count() == 1 }, time.Second, 5*time.Millisecond)

	// Fires while the first run is still inside Run: must not start a second.
	tick()
	require.Equal(t, 1, j.count())

	close(j.release)
	<-done
	tick()
	require.Equal(t, 2, j.count())
}

func TestAddJobRejectsDuplicateName(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&fakeJob{}))
	require.Error(t, s.AddJob(&fakeJob{}))
}

type badSpecJob struct {
	fakeJob
}

func (j *badSpecJob) Spec() string { return "whenever" }

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := NewCronScheduler()
	require.Error(t, s.AddJob(&badSpecJob{}))
}
