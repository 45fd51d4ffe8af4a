package utils

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Processes owns the long running goroutines of the bot so shutdown can
// cancel them together and wait for them to return.
type Processes struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running map[string]*process
}

type process struct {
	cancel context.CancelFunc
}

func NewProcesses(parent context.Context) *Processes {
	ctx, cancel := context.WithCancel(parent)
	return &Processes{
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]*process),
	}
}

// Start runs fn in its own goroutine. A process already running under the
// same name is cancelled first. Panics are logged and end only that process.
func (p *Processes) Start(name string, fn func(ctx context.Context)) {
	p.mu.Lock()
	if old, ok := p.running[name]; ok {
		slog.Warn("Replacing running process", slog.String("type", "sys"), slog.String("process", name))
		old.cancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	proc := &process{cancel: cancel}
	p.running[name] = proc
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("type", "error"),
					slog.String("process", name),
					slog.Any("panic", r),
				)
			}
			cancel()
			p.mu.Lock()
			if p.running[name] == proc {
				delete(p.running, name)
			}
			p.mu.Unlock()
		}()

		slog.Debug("Background process started", slog.String("type", "sys"), slog.String("process", name))
		fn(ctx)
		slog.Debug("Background process ended", slog.String("type", "sys"), slog.String("process", name))
	}()
}

func (p *Processes) Stop(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if proc, ok := p.running[name]; ok {
		proc.cancel()
	}
}

// Wait blocks until every process returned or the timeout elapsed, without
// cancelling anything. Use it when processes end on their own.
func (p *Processes) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Timed out waiting for background processes",
			slog.String("type", "sys"),
			slog.Duration("timeout", timeout),
			slog.Any("running", p.Names()),
		)
		return context.DeadlineExceeded
	}
}

// Shutdown cancels every process and waits for them.
func (p *Processes) Shutdown(timeout time.Duration) error {
	p.cancel()
	return p.Wait(timeout)
}

func (p *Processes) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}

func (p *Processes) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.running))
	for name := range p.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Processes) Context() context.Context {
	return p.ctx
}
