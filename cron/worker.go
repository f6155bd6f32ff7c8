package cron

import (
	"context"
	"time"

	robfigcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one periodic task.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context)
}

// Worker runs housekeeping jobs on cron specs. Overlapping runs of the same
// job are skipped and panics are recovered.
type Worker struct {
	c      *robfigcron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

type zapCronLogger struct {
	l *zap.SugaredLogger
}

func (z zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Debugw(msg, keysAndValues...)
}

func (z zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	z.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

func NewWorker(logger *zap.Logger) *Worker {
	cl := zapCronLogger{l: logger.Named("cron").Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		c: robfigcron.New(
			robfigcron.WithLogger(cl),
			robfigcron.WithChain(robfigcron.Recover(cl), robfigcron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job. Specs use the standard five-field format or descriptors
// such as "@every 1m".
func (w *Worker) Add(job Job) error {
	_, err := w.c.AddFunc(job.Spec, func() {
		start := time.Now()
		job.Run(w.ctx)
		w.logger.Debug("cron job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	})
	return err
}

func (w *Worker) Start() {
	w.c.Start()
}

// Stop prevents new runs, cancels the context handed to running jobs and waits
// for them until ctx is done.
func (w *Worker) Stop(ctx context.Context) {
	done := w.c.Stop()
	w.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		w.logger.Warn("cron jobs still running at shutdown")
	}
}
