package queue

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is an HTTP request held back for a later replay.
type Job struct {
	ID          string
	Method      string
	Path        string
	Header      http.Header
	Body        []byte
	NextAttempt time.Time
	Attempts    int
	MaxAttempts int
}

func NewJob(method, path string, header http.Header, body []byte, maxAttempts int) *Job {
	return &Job{
		ID:          uuid.New().String(),
		Method:      method,
		Path:        path,
		Header:      header.Clone(),
		Body:        body,
		MaxAttempts: maxAttempts,
	}
}

// Exhausted reports whether the job has used up its attempts.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// Backoff doubles base for every attempt already made, capped at max.
func Backoff(base, max time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}

type Queue struct {
	mu   sync.Mutex
	jobs []*Job
}

func New() *Queue {
	return &Queue{}
}

// Push schedules job to run at job.NextAttempt.
func (q *Queue) Push(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

// PopDue removes and returns the oldest job due at now, or nil.
func (q *Queue) PopDue(now time.Time) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.jobs {
		if !job.NextAttempt.After(now) {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return job
		}
	}
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) Jobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}
