package handlers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/constants"
)

func TestEventBroadcaster_DeliversToListeners(t *testing.T) {
	job := NewJobManager().CreateJob("s1")
	ch := job.AddListener()

	job.start(3)
	job.progress(1, 3)

	if ev := <-ch; ev.Type != "started" {
		t.Errorf("expected started event, got %s", ev.Type)
	}
	if ev := <-ch; ev.Type != "progress" {
		t.Errorf("expected progress event, got %s", ev.Type)
	}
	if snap := job.Snapshot(); snap.Progress != 33 || snap.Status != JobStatusRunning {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	job.RemoveListener(ch)
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after removal")
	}
}

func TestExportJob_FailKeepsNoArchive(t *testing.T) {
	job := NewJobManager().CreateJob("s1")
	job.fail(errors.New("disk full"))

	if job.GetStatus() != JobStatusFailed || job.Archive() != nil {
		t.Errorf("failed job should have no archive, status %s", job.GetStatus())
	}
	if snap := job.Snapshot(); snap.Error != "disk full" || snap.CompletedAt == nil {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJobManager_PrunesFinishedJobs(t *testing.T) {
	m := NewJobManager()
	m.retention = time.Minute

	old := m.CreateJob("s1")
	old.fail(errors.New("boom"))
	stale := time.Now().Add(-2 * time.Minute)
	old.mu.Lock()
	old.CompletedAt = &stale
	old.mu.Unlock()

	running := m.CreateJob("s1")
	running.start(1)

	m.CreateJob("s2")

	if m.GetJob(old.ID) != nil {
		t.Error("stale finished job should be pruned")
	}
	if m.GetJob(running.ID) == nil {
		t.Error("running job must not be pruned")
	}
}

// signalRecorder reports the first flush, which is the initial status event.
type signalRecorder struct {
	*httptest.ResponseRecorder
	once    sync.Once
	flushed chan struct{}
}

func (r *signalRecorder) Flush() {
	r.ResponseRecorder.Flush()
	r.once.Do(func() { close(r.flushed) })
}

func TestStreamExportEvents_RelaysUntilCompleted(t *testing.T) {
	job := NewJobManager().CreateJob("s1")
	recorder := &signalRecorder{ResponseRecorder: httptest.NewRecorder(), flushed: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		defer close(done)
		streamExportEvents(recorder, httptest.NewRequest("GET", "/", nil), job)
	}()

	select {
	case <-recorder.flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never sent its status event")
	}

	job.start(2)
	job.progress(1, 2)
	job.complete(&archive.Report{Archive: archive.ArchiveName}, []byte("zip"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after completion")
	}

	var order []string
	for line := range strings.SplitSeq(recorder.Body.String(), "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			order = append(order, name)
		}
	}
	want := []string{"status", "started", "progress", "completed"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("got events %v, want %v", order, want)
	}
}

func TestEventBroadcaster_FinalEventClosesFullListener(t *testing.T) {
	job := NewJobManager().CreateJob("s1")
	ch := job.AddListener()

	for i := range constants.EventChannelBuffer + 5 {
		job.progress(i, constants.EventChannelBuffer+5)
	}
	job.complete(&archive.Report{}, []byte("zip"))

	received := 0
	for ev := range ch {
		if ev.Type == eventCompleted {
			t.Error("completed event should not fit into a full buffer")
		}
		received++
	}
	if received != constants.EventChannelBuffer {
		t.Errorf("expected %d buffered events, got %d", constants.EventChannelBuffer, received)
	}

	// Already closed by the job; removing it again must not panic.
	job.RemoveListener(ch)
}

// stalledRecorder blocks on the second flush, the first relayed event, until
// gate is closed.
type stalledRecorder struct {
	*httptest.ResponseRecorder
	flushes int
	flushed chan struct{}
	stalled chan struct{}
	gate    chan struct{}
}

func (r *stalledRecorder) Flush() {
	r.ResponseRecorder.Flush()
	r.flushes++
	switch r.flushes {
	case 1:
		close(r.flushed)
	case 2:
		close(r.stalled)
		<-r.gate
	}
}

func TestStreamExportEvents_EndsWhenFinalEventDropped(t *testing.T) {
	job := NewJobManager().CreateJob("s1")
	recorder := &stalledRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		flushed:          make(chan struct{}),
		stalled:          make(chan struct{}),
		gate:             make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		streamExportEvents(recorder, httptest.NewRequest("GET", "/", nil), job)
	}()

	select {
	case <-recorder.flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never sent its status event")
	}

	job.start(1)
	select {
	case <-recorder.stalled:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never relayed the started event")
	}

	// Fill the listener buffer so the completed event is dropped.
	for range constants.EventChannelBuffer + 1 {
		job.progress(0, 1)
	}
	job.complete(&archive.Report{Archive: archive.ArchiveName}, []byte("zip"))
	close(recorder.gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after the job finished")
	}

	body := recorder.Body.String()
	if strings.Contains(body, "event: completed") {
		t.Error("completed event should have been dropped")
	}
	last := body[strings.LastIndex(body, "event: "):]
	if !strings.HasPrefix(last, "event: status") || !strings.Contains(last, `"status":"completed"`) {
		t.Errorf("expected a closing completed status event, got %q", last)
	}
}
