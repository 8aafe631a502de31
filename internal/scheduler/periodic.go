package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Periodic runs a fixed set of maintenance jobs on their own cron.
type Periodic struct {
	cron    *cron.Cron
	mu      sync.Mutex
	started bool
}

func NewPeriodic() *Periodic {
	return &Periodic{cron: cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))}
}

// Add registers fn under name. Jobs added after Start run as well.
func (p *Periodic) Add(name, schedule string, fn func()) error {
	if _, err := p.cron.AddFunc(schedule, func() {
		log.Printf("Scheduler: running %s", name)
		fn()
	}); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (p *Periodic) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.cron.Start()
	p.started = true
}

// Stop waits for running jobs to finish.
func (p *Periodic) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	<-p.cron.Stop().Done()
	p.started = false
}

// Len reports the number of registered jobs.
func (p *Periodic) Len() int {
	return len(p.cron.Entries())
}
