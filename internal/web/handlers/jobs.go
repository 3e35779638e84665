package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/constants"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Export job event types.
const (
	eventStarted   = "started"
	eventProgress  = "progress"
	eventCompleted = "completed"
	eventFailed    = "job_error"
)

// ExportJob is an archive export running in the background. The finished
// archive is held in memory until the job is pruned.
type ExportJob struct {
	EventBroadcaster

	ID          string
	SessionID   string
	Status      JobStatus
	Progress    int
	TotalPages  int
	DonePages   int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
	Report      *archive.Report

	archive []byte
}

// ExportJobView is the client-facing state of an export job.
type ExportJobView struct {
	ID          string          `json:"id"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	TotalPages  int             `json:"total_pages"`
	DonePages   int             `json:"done_pages"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Report      *archive.Report `json:"report,omitempty"`
}

// GetStatus returns the current job status.
func (j *ExportJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Snapshot returns the job state under its lock.
func (j *ExportJob) Snapshot() ExportJobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return ExportJobView{
		ID:          j.ID,
		Status:      j.Status,
		Progress:    j.Progress,
		TotalPages:  j.TotalPages,
		DonePages:   j.DonePages,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Report:      j.Report,
	}
}

// Archive returns the finished archive, or nil while the job is not completed.
func (j *ExportJob) Archive() []byte {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.Status != JobStatusCompleted {
		return nil
	}
	return j.archive
}

func (j *ExportJob) start(total int) {
	j.mu.Lock()
	j.Status = JobStatusRunning
	j.TotalPages = total
	j.mu.Unlock()
	j.SendEvent(JobEvent{Type: eventStarted, Data: map[string]int{"total": total}})
}

func (j *ExportJob) progress(done, total int) {
	j.mu.Lock()
	j.DonePages = done
	j.TotalPages = total
	if total > 0 {
		j.Progress = done * 100 / total
	}
	j.mu.Unlock()
	j.SendEvent(JobEvent{Type: eventProgress, Data: map[string]int{"done": done, "total": total}})
}

func (j *ExportJob) complete(report *archive.Report, data []byte) {
	now := time.Now()
	j.mu.Lock()
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.CompletedAt = &now
	j.Report = report
	j.archive = data
	j.mu.Unlock()
	j.SendFinalEvent(JobEvent{Type: eventCompleted, Data: report})
}

func (j *ExportJob) fail(err error) {
	now := time.Now()
	j.mu.Lock()
	j.Status = JobStatusFailed
	j.Error = err.Error()
	j.CompletedAt = &now
	j.mu.Unlock()
	j.SendFinalEvent(JobEvent{Type: eventFailed, Message: err.Error()})
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// SendFinalEvent sends the last event and closes every listener, so a
// listener whose buffer was full still sees the job end.
func (b *EventBroadcaster) SendFinalEvent(event JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
		}
		close(listener)
	}
	b.listeners = nil
}

// JobManager manages async export jobs.
type JobManager struct {
	jobs      map[string]*ExportJob
	retention time.Duration
	mu        sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:      make(map[string]*ExportJob),
		retention: constants.JobRetention,
	}
}

// CreateJob registers a pending export job for a session.
func (m *JobManager) CreateJob(sessionID string) *ExportJob {
	job := &ExportJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.pruneLocked(job.StartedAt)
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *ExportJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// GetSessionJob retrieves a job only if it belongs to the session.
func (m *JobManager) GetSessionJob(id, sessionID string) *ExportJob {
	job := m.GetJob(id)
	if job == nil || job.SessionID != sessionID {
		return nil
	}
	return job
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// pruneLocked drops finished jobs older than the retention window so their
// archives are released.
func (m *JobManager) pruneLocked(now time.Time) {
	for id, job := range m.jobs {
		job.mu.RLock()
		done := job.CompletedAt
		job.mu.RUnlock()
		if done != nil && now.Sub(*done) > m.retention {
			delete(m.jobs, id)
		}
	}
}
