package title_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ashleyhq/chat-backend/internal/service/title"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []string
	titles  map[string]string
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{titles: map[string]string{}}
}

func (a *recordingApplier) ApplyDerivedTitle(sessionID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.titles[sessionID]
	if ok {
		a.applied = append(a.applied, sessionID)
	}
	return t, ok
}

func (a *recordingApplier) appliedTo(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.applied {
		if id == sessionID {
			return true
		}
	}
	return false
}

func TestScheduleFiresAfterDelay(t *testing.T) {
	applier := newRecordingApplier()
	applier.titles["s1"] = "hello there"
	gen := title.NewGenerator(applier, 10*time.Millisecond, nil)
	defer gen.Close()

	gen.Schedule("s1")

	deadline := time.After(time.Second)
	for !applier.appliedTo("s1") {
		select {
		case <-deadline:
			t.Fatal("timer never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestScheduleIsOncePerSession(t *testing.T) {
	applier := newRecordingApplier()
	applier.titles["s1"] = "hello"
	gen := title.NewGenerator(applier, 10*time.Millisecond, nil)
	defer gen.Close()

	gen.Schedule("s1")
	gen.Schedule("s1")
	gen.Schedule("s1")

	time.Sleep(100 * time.Millisecond)

	applier.mu.Lock()
	count := len(applier.applied)
	applier.mu.Unlock()
	if count != 1 {
		t.Fatalf("expected exactly one application, got %d", count)
	}
}

func TestCancelBeforeFire(t *testing.T) {
	applier := newRecordingApplier()
	applier.titles["doomed"] = "never seen"
	gen := title.NewGenerator(applier, 20*time.Millisecond, nil)
	defer gen.Close()

	gen.Schedule("doomed")
	gen.Cancel("doomed")

	time.Sleep(100 * time.Millisecond)

	if applier.appliedTo("doomed") {
		t.Fatal("cancelled timer must not apply a title")
	}
}

func TestCloseStopsPendingTimers(t *testing.T) {
	applier := newRecordingApplier()
	applier.titles["s1"] = "x"
	applier.titles["s2"] = "y"
	gen := title.NewGenerator(applier, 20*time.Millisecond, nil)

	gen.Schedule("s1")
	gen.Schedule("s2")
	gen.Close()

	time.Sleep(100 * time.Millisecond)

	if applier.appliedTo("s1") || applier.appliedTo("s2") {
		t.Fatal("closed generator must not apply titles")
	}

	gen.Schedule("s3")
	time.Sleep(50 * time.Millisecond)
	if applier.appliedTo("s3") {
		t.Fatal("schedule after close must be ignored")
	}
}
