package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"barriometrics/server/config"
	"barriometrics/server/internal/aggregator"
	"barriometrics/server/internal/models"
)

// Pipeline drains the group queue with a pool of workers, computing one
// snapshot per group and upserting it into the store. Groups are independent
// of each other so workers never coordinate beyond the store's own locking.
type Pipeline struct {
	store     *aggregator.SnapshotStore
	queue     *GroupQueue
	config    *config.Config
	logger    *logrus.Logger
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	snapshotDate time.Time
	rate         *models.CurrencyRate
}

// NewPipeline creates a pipeline writing to store. The snapshot date and
// currency rate are fixed per run: every group computed by this pipeline
// belongs to the same aggregation day.
func NewPipeline(store *aggregator.SnapshotStore, queue *GroupQueue, cfg *config.Config, logger *logrus.Logger, snapshotDate time.Time, rate *models.CurrencyRate) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		store:        store,
		queue:        queue,
		config:       cfg,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		snapshotDate: snapshotDate,
		rate:         rate,
	}
}

// Start launches the worker pool.
func (p *Pipeline) Start() {
	for i := 0; i < p.config.Aggregation.WorkerCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop cancels in-flight work and waits for the workers to exit.
func (p *Pipeline) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// Wait blocks until every worker has exited, which happens once the queue is
// closed and drained.
func (p *Pipeline) Wait() {
	p.waitGroup.Wait()
}

func (p *Pipeline) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case group, ok := <-p.queue.Items():
			if !ok {
				return
			}
			p.processGroup(group)
		}
	}
}

func (p *Pipeline) processGroup(group aggregator.Group) {
	snap := aggregator.ComputeSnapshot(group, p.snapshotDate, p.config.Aggregation.SnapshotWindowDays, p.rate)
	if snap == nil {
		p.logger.WithFields(logrus.Fields{
			"area_id":        group.AreaID,
			"operation_type": group.OperationType,
		}).Debug("Group has no qualifying listings, skipping snapshot")
		return
	}

	p.store.Upsert(*snap)
	p.logger.WithFields(logrus.Fields{
		"area_id":        group.AreaID,
		"operation_type": group.OperationType,
		"listing_count":  snap.ListingCount,
	}).Info("Computed snapshot")
}

// Run is the whole aggregation day in one call: group the listings, push
// every group, drain the queue, then attach yield estimates once both sides
// of each area exist. Returns the number of snapshots stored for the date.
func (p *Pipeline) Run(listings []models.ListingObservation) (int, error) {
	p.Start()

	for _, group := range aggregator.GroupListings(listings) {
		if err := p.queue.Push(group); err != nil {
			p.queue.Close()
			p.Stop()
			return 0, err
		}
	}

	p.queue.Close()
	p.Wait()

	date := p.snapshotDate.Format("2006-01-02")
	aggregator.AttachYieldEstimates(p.store, date)

	count := 0
	for _, snap := range p.store.All() {
		if snap.SnapshotDate == date {
			count++
		}
	}
	return count, nil
}
