package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// PriceChecker runs the staleness sweep on a cron schedule
type PriceChecker struct {
	cron     *cron.Cron
	job      cron.Job
	sweeper  *Sweeper
	schedule string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPriceChecker creates a checker. schedule accepts descriptors such as
// "@every 30m" or six-field expressions with seconds.
func NewPriceChecker(sweeper *Sweeper, schedule string) *PriceChecker {
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())

	pc := &PriceChecker{
		cron:     cron.New(cron.WithSeconds()),
		sweeper:  sweeper,
		schedule: schedule,
		ctx:      ctx,
		cancel:   cancel,
	}
	// One wrapped job serves both the schedule and the startup run, so they
	// share the skip-if-running guard.
	pc.job = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(pc.checkAllPrices))
	return pc
}

// Start schedules the sweep and also runs one immediately
func (pc *PriceChecker) Start() error {
	if _, err := pc.cron.AddJob(pc.schedule, pc.job); err != nil {
		return fmt.Errorf("failed to schedule price checker: %w", err)
	}

	pc.wg.Add(1)
	go func() {
		defer pc.wg.Done()
		pc.job.Run()
	}()

	pc.cron.Start()
	log.Printf("Price checker scheduled (%s)", pc.schedule)
	return nil
}

// Stop cancels a sweep in progress and waits for it to return
func (pc *PriceChecker) Stop() {
	pc.cancel()
	<-pc.cron.Stop().Done()
	pc.wg.Wait()
}

// RunOnce runs a single sweep outside the schedule
func (pc *PriceChecker) RunOnce(ctx context.Context) (SweepResult, error) {
	log.Println("Manual price sweep triggered")
	return pc.sweeper.Sweep(ctx)
}

func (pc *PriceChecker) checkAllPrices() {
	if _, err := pc.sweeper.Sweep(pc.ctx); err != nil {
		log.Printf("Price sweep failed: %v", err)
	}
}
