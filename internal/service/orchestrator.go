package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
	"leadkit/internal/tabular"
)

// DefaultPollInterval is used when OrchestratorConfig.PollInterval is unset.
const DefaultPollInterval = 5 * time.Second

// OrchestratorConfig holds the settings of a batch orchestrator.
type OrchestratorConfig struct {
	Credential   ports.Credential
	PollInterval time.Duration
}

// JobHandle identifies one submission.
type JobHandle struct {
	ID         string `json:"id"`
	Generation uint64 `json:"generation"`
}

// run tracks the observers of one submission.
type run struct {
	done  chan struct{}
	final domain.BatchJob
	err   error
}

// Orchestrator drives one remote batch validation job at a time:
// submit, poll until complete, fetch and decode the result payload.
type Orchestrator struct {
	bulk      ports.BulkValidator
	scheduler Scheduler
	notifier  ports.Notifier
	cfg       OrchestratorConfig
	logger    *slog.Logger

	mu      sync.Mutex
	job     domain.BatchJob
	gen     uint64
	task    Task
	results []domain.ValidationRecord
	run     *run
	last    *run // most recently finished submission
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	bulk ports.BulkValidator,
	scheduler Scheduler,
	notifier ports.Notifier,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if scheduler == nil {
		scheduler = NewTickerScheduler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		bulk:      bulk,
		scheduler: scheduler,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		job:       domain.BatchJob{State: domain.JobIdle},
	}
}

// Submit uploads addresses as a new batch job and starts polling it.
// Only one job may be in flight; Submit fails with InvalidStateError unless
// the orchestrator is idle.
func (o *Orchestrator) Submit(ctx context.Context, addresses []string) (JobHandle, error) {
	if o.bulk == nil {
		return JobHandle{}, &domain.ConfigError{Detail: "no batch validation service configured"}
	}
	if strings.TrimSpace(o.cfg.Credential.APIKey) == "" {
		return JobHandle{}, &domain.ConfigError{Detail: "API key is not set"}
	}

	rows := make([][]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			rows = append(rows, []string{a})
		}
	}
	if len(rows) == 0 {
		return JobHandle{}, &domain.EmptyInputError{Detail: "no email addresses to validate"}
	}

	o.mu.Lock()
	if o.job.State != domain.JobIdle {
		state := o.job.State
		o.mu.Unlock()
		return JobHandle{}, &domain.InvalidStateError{Op: "submit", State: state}
	}
	o.gen++
	gen := o.gen
	o.job = domain.BatchJob{State: domain.JobSubmitting}
	o.results = nil
	o.run = &run{done: make(chan struct{})}
	o.last = nil
	o.mu.Unlock()

	logger := o.logger.With("generation", gen)
	logger.Info("submitting batch", "addresses", len(rows))

	content, err := tabular.EncodeDelimited([]string{"email"}, rows)
	if err != nil {
		return JobHandle{}, o.fail(ctx, gen, fmt.Errorf("encode upload: %w", err))
	}

	resp, err := o.bulk.SubmitFile(ctx, o.cfg.Credential, ports.UploadFile{
		Name:          "emails-" + uuid.NewString() + ".csv",
		Content:       content,
		AddressColumn: 1,
		HasHeaderRow:  true,
	})
	if err != nil {
		return JobHandle{}, o.fail(ctx, gen, err)
	}
	if !resp.Success || resp.JobID == "" {
		msg := resp.Message
		if msg == "" {
			msg = "upload was not accepted"
		}
		return JobHandle{}, o.fail(ctx, gen, &domain.RemoteRejectionError{Op: "submit", Message: msg})
	}

	o.mu.Lock()
	if o.gen != gen || o.job.State != domain.JobSubmitting {
		state := o.job.State
		o.mu.Unlock()
		return JobHandle{}, &domain.InvalidStateError{Op: "submit", State: state}
	}
	o.job.ID = resp.JobID
	o.job.State = domain.JobPolling
	// Polling outlives the submitting request; Cancel ends it.
	o.task = o.scheduler.Every(context.WithoutCancel(ctx), o.cfg.PollInterval, o.pollStep(resp.JobID, gen))
	o.mu.Unlock()

	o.logger.Info("batch accepted", "job_id", resp.JobID, "generation", gen)
	o.notify(ctx, domain.Notice{
		Title:    "Upload accepted",
		Detail:   "Validation started for " + strconv.Itoa(len(rows)) + " addresses.",
		Severity: domain.SeverityInfo,
	})
	return JobHandle{ID: resp.JobID, Generation: gen}, nil
}

// pollStep returns the poll iteration for job id in generation gen.
func (o *Orchestrator) pollStep(id string, gen uint64) StepFunc {
	return func(ctx context.Context) StepOutcome {
		status, err := o.bulk.PollStatus(ctx, o.cfg.Credential, id)

		o.mu.Lock()
		if !o.currentLocked(id, gen, domain.JobPolling) {
			o.mu.Unlock()
			o.logger.Debug("discarding stale status", "job_id", id, "generation", gen)
			return StepContinue
		}
		if err != nil {
			n := o.failLocked(err)
			o.mu.Unlock()
			o.notify(ctx, n)
			return StepFail
		}

		if p := parseProgress(status.CompletionPercent); p > o.job.Progress {
			o.job.Progress = p
		}

		switch {
		case status.IsComplete():
			o.job.State = domain.JobFetching
			o.mu.Unlock()
			o.logger.Info("batch complete, fetching results", "job_id", id)
			return o.materialize(ctx, id, gen)

		case strings.TrimSpace(status.ErrorReason) != "":
			n := o.failLocked(&domain.RemoteRejectionError{Op: "poll", Message: status.ErrorReason})
			o.mu.Unlock()
			o.notify(ctx, n)
			return StepFail
		}

		progress := o.job.Progress
		o.mu.Unlock()
		o.logger.Debug("batch in progress", "job_id", id, "progress", progress, "state", status.State)
		return StepContinue
	}
}

// materialize fetches and decodes the result payload of a completed job.
func (o *Orchestrator) materialize(ctx context.Context, id string, gen uint64) StepOutcome {
	payload, err := o.bulk.FetchResult(ctx, o.cfg.Credential, id)

	o.mu.Lock()
	if !o.currentLocked(id, gen, domain.JobFetching) {
		o.mu.Unlock()
		return StepComplete
	}
	if err != nil {
		n := o.failLocked(err)
		o.mu.Unlock()
		o.notify(ctx, n)
		return StepFail
	}
	o.job.State = domain.JobDecoding
	o.mu.Unlock()

	records, err := DecodeResults(payload)
	if err == nil && len(records) == 0 {
		err = &domain.EmptyInputError{Detail: "result file has no usable rows"}
	}

	o.mu.Lock()
	if !o.currentLocked(id, gen, domain.JobDecoding) {
		o.mu.Unlock()
		return StepComplete
	}
	if err != nil {
		n := o.failLocked(fmt.Errorf("decode results: %w", err))
		o.mu.Unlock()
		o.notify(ctx, n)
		return StepFail
	}
	o.results = records
	o.job.State = domain.JobDone
	o.job.Progress = 100
	o.finishLocked(nil)
	o.mu.Unlock()

	o.logger.Info("batch done", "job_id", id, "records", len(records))
	o.notify(ctx, domain.Notice{
		Title:    "Validation complete",
		Detail:   strconv.Itoa(len(records)) + " addresses validated.",
		Severity: domain.SeveritySuccess,
	})
	return StepComplete
}

// Cancel abandons a job that is being polled. The state returns to idle at
// once; responses still in flight are discarded when they arrive.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	if o.job.State != domain.JobPolling {
		state := o.job.State
		o.mu.Unlock()
		return &domain.InvalidStateError{Op: "cancel", State: state}
	}
	id := o.job.ID
	if o.task != nil {
		o.task.Stop()
		o.task = nil
	}
	o.gen++
	o.job = domain.BatchJob{State: domain.JobIdle}
	o.results = nil
	o.finishLocked(domain.ErrJobCancelled)
	o.mu.Unlock()

	o.logger.Info("batch cancelled", "job_id", id)
	o.notify(ctx, domain.Notice{
		Title:    "Validation cancelled",
		Detail:   "Polling stopped for job " + id + ".",
		Severity: domain.SeverityInfo,
	})
	return nil
}

// Reset clears a finished job so a new one can be submitted. Resetting an
// idle orchestrator is a no-op.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.job.State == domain.JobIdle:
		return nil
	case !o.job.State.IsTerminal():
		return &domain.InvalidStateError{Op: "reset", State: o.job.State}
	}
	o.gen++
	o.job = domain.BatchJob{State: domain.JobIdle}
	o.results = nil
	o.task = nil
	o.last = nil
	return nil
}

// Snapshot returns a copy of the current job.
func (o *Orchestrator) Snapshot() domain.BatchJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job
}

// Results returns a copy of the decoded records of a done job.
func (o *Orchestrator) Results() []domain.ValidationRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.results) == 0 {
		return nil
	}
	out := make([]domain.ValidationRecord, len(o.results))
	copy(out, o.results)
	return out
}

// Wait blocks until the current submission finishes, or returns at once
// with the outcome of the last one. It returns the job's error when it
// failed and ErrJobCancelled when it was cancelled.
func (o *Orchestrator) Wait(ctx context.Context) (domain.BatchJob, error) {
	o.mu.Lock()
	r, job := o.run, o.job
	if r == nil {
		r = o.last
	}
	o.mu.Unlock()
	if r == nil {
		return job, &domain.InvalidStateError{Op: "wait", State: job.State}
	}

	select {
	case <-ctx.Done():
		return o.Snapshot(), ctx.Err()
	case <-r.done:
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if r.err != nil {
		return r.final, r.err
	}
	return r.final, r.final.Err
}

// currentLocked reports whether a response for (id, gen) still applies.
func (o *Orchestrator) currentLocked(id string, gen uint64, want domain.JobState) bool {
	return o.gen == gen && o.job.ID == id && o.job.State == want
}

// fail moves submission gen to failed, unless it has been superseded.
func (o *Orchestrator) fail(ctx context.Context, gen uint64, err error) error {
	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return err
	}
	n := o.failLocked(err)
	o.mu.Unlock()
	o.notify(ctx, n)
	return err
}

// failLocked records err on the job and returns the notice to deliver once
// the lock is released.
func (o *Orchestrator) failLocked(err error) domain.Notice {
	if o.task != nil {
		o.task.Stop()
		o.task = nil
	}
	o.job.State = domain.JobFailed
	o.job.Err = err
	o.job.Error = domain.Info(err)
	o.finishLocked(nil)

	o.logger.Error("batch failed", "job_id", o.job.ID, "code", o.job.Error.Code, "error", err)
	return domain.Describe(err)
}

// finishLocked releases the waiters of the current submission.
func (o *Orchestrator) finishLocked(err error) {
	if o.run == nil {
		return
	}
	o.run.final = o.job
	o.run.err = err
	close(o.run.done)
	o.last, o.run = o.run, nil
}

func (o *Orchestrator) notify(ctx context.Context, n domain.Notice) {
	if o.notifier != nil {
		o.notifier.Notify(ctx, n)
	}
}

// parseProgress reads a completion percentage such as "42", "42.5" or
// "42%" and clamps it to 0..100. Unreadable values count as 0.
func parseProgress(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}
