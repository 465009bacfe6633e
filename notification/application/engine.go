package application

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/serenease/notify/infrastructure/valkey"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/msgworker"
	"github.com/sirupsen/logrus"
)

const (
	wakeSignalChannel = "engine:signal"
	claimLockTTL      = 30 * time.Second
)

// Engine drives the clock: an adaptive timer loop that dispatches due
// deliveries through the worker pool, a cron safety sweep that catches
// anything the timer math missed, and an optional Valkey pub/sub wake-up
// signal so schedule changes shorten the current sleep.
type Engine struct {
	scheduler  *DeliveryScheduler
	dispatcher *Dispatcher
	planner    *CampaignPlanner
	campaigns  domain.ICampaignRepository
	pool       *msgworker.DeliveryWorkerPool
	vk         *valkey.Client // nil when Valkey is disabled

	tickInterval time.Duration
	wake         chan struct{}
	cron         *cron.Cron
	startOnce    sync.Once
	stopOnce     sync.Once
	cancel       context.CancelFunc
	running      bool
	mu           sync.Mutex
	lastTickAt   time.Time
	nextWakeAt   time.Time
}

func NewEngine(
	scheduler *DeliveryScheduler,
	dispatcher *Dispatcher,
	planner *CampaignPlanner,
	campaigns domain.ICampaignRepository,
	pool *msgworker.DeliveryWorkerPool,
	vk *valkey.Client,
	tickInterval time.Duration,
) *Engine {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &Engine{
		scheduler:    scheduler,
		dispatcher:   dispatcher,
		planner:      planner,
		campaigns:    campaigns,
		pool:         pool,
		vk:           vk,
		tickInterval: tickInterval,
		wake:         make(chan struct{}, 1),
	}
}

// Start launches the background loop. Safe to call once; the engine owns
// the pool lifecycle from here until Stop.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		e.cancel = cancel
		e.running = true

		e.pool.Start(runCtx)

		// Safety sweep: a full due-scan plus campaign status refresh on a
		// coarse schedule, independent of the adaptive timer.
		e.cron = cron.New()
		_, err := e.cron.AddFunc("@every 5m", func() {
			e.processDue(runCtx)
			e.refreshCampaigns(runCtx)
		})
		if err != nil {
			logrus.WithError(err).Error("[ENGINE] Could not register safety sweep")
		}
		e.cron.Start()

		if e.vk != nil {
			signalChan := e.vk.Key(wakeSignalChannel)
			go func() {
				err := e.vk.Subscribe(runCtx, signalChan, func(string) {
					logrus.Debug("[ENGINE] Wake-up signal received")
					e.wakeLocal()
				})
				if err != nil && runCtx.Err() == nil {
					logrus.WithError(err).Error("[ENGINE] Pub/Sub listener failed")
				}
			}()
			logrus.Infof("[ENGINE] Started, watching channel %s", signalChan)
		} else {
			logrus.Info("[ENGINE] Started (standalone, no Valkey)")
		}

		go e.run(runCtx)
	})
}

// Stop shuts the loop and pool down gracefully.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		logrus.Info("[ENGINE] Stopping...")
		if e.cancel != nil {
			e.cancel()
		}
		if e.cron != nil {
			e.cron.Stop()
		}
		e.pool.Stop()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	})
}

// Wake cuts the current sleep short. Called after schedule mutations so a
// newly inserted near-term delivery is not stuck behind a long timer; with
// Valkey enabled the signal also reaches other replicas.
func (e *Engine) Wake(ctx context.Context) {
	e.wakeLocal()
	if e.vk != nil {
		if err := e.vk.Publish(ctx, e.vk.Key(wakeSignalChannel), "wake"); err != nil {
			logrus.WithError(err).Debug("[ENGINE] Could not publish wake signal")
		}
	}
}

func (e *Engine) wakeLocal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) run(ctx context.Context) {
	for {
		e.processDue(ctx)

		sleep := e.tickInterval
		nextAt, err := e.scheduler.NextPendingAt(ctx)
		if err != nil {
			logrus.WithError(err).Error("[ENGINE] Could not peek next pending delivery")
		} else if !nextAt.IsZero() {
			until := time.Until(nextAt)
			if until < time.Second {
				until = time.Second
			}
			if until < sleep {
				sleep = until
			}
		}

		e.mu.Lock()
		e.nextWakeAt = time.Now().Add(sleep)
		e.mu.Unlock()

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-e.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// processDue claims every ripe delivery and hands it to the pool. A claim
// that cannot be enqueued is released untouched so the next tick retries it.
// Store errors abort the tick; they are process-level conditions, not
// per-delivery failures.
func (e *Engine) processDue(ctx context.Context) {
	now := time.Now().UTC()

	e.mu.Lock()
	e.lastTickAt = now
	e.mu.Unlock()

	due, err := e.scheduler.Due(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("[ENGINE] Due scan failed, will retry next tick")
		return
	}

	for _, delivery := range due {
		d := delivery

		// Cross-replica exclusion first, then the CAS claim. Either failing
		// means someone else owns this delivery.
		if e.vk != nil && !e.vk.TryLock(ctx, e.vk.Key("lock", "exec", d.ID), claimLockTTL) {
			continue
		}

		if err := e.scheduler.Claim(ctx, d.ID); err != nil {
			if err != domain.ErrInvalidTransition {
				logrus.WithError(err).Warnf("[ENGINE] Could not claim delivery %s", d.ID)
			}
			continue
		}

		enqueued := e.pool.TryDispatch(msgworker.DeliveryJob{
			DeliveryID: d.ID,
			Key:        d.IdempotencyKey(),
			Handler: func(jobCtx context.Context) error {
				e.dispatcher.Dispatch(jobCtx, d)
				return nil
			},
		})
		if !enqueued {
			if err := e.scheduler.Release(ctx, d.ID, d.SendAt, d.Attempts); err != nil {
				logrus.WithError(err).Errorf("[ENGINE] Could not release unqueued delivery %s", d.ID)
			}
		}
	}
}

func (e *Engine) refreshCampaigns(ctx context.Context) {
	campaigns, err := e.campaigns.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("[ENGINE] Campaign refresh failed")
		return
	}
	for _, c := range campaigns {
		if c.Status != domain.CampaignStatusSending && c.Status != domain.CampaignStatusScheduled {
			continue
		}
		if err := e.planner.RefreshStatus(ctx, c.ID); err != nil {
			logrus.WithError(err).Warnf("[ENGINE] Could not refresh campaign %s", c.ID)
		}
	}
}

// Stats is a live snapshot for the monitoring endpoint.
type EngineStats struct {
	Running      bool                `json:"running"`
	TickInterval string              `json:"tick_interval"`
	LastTickAt   time.Time           `json:"last_tick_at"`
	NextWakeAt   time.Time           `json:"next_wake_at"`
	Pool         msgworker.PoolStats `json:"pool"`
}

func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStats{
		Running:      e.running,
		TickInterval: e.tickInterval.String(),
		LastTickAt:   e.lastTickAt,
		NextWakeAt:   e.nextWakeAt,
		Pool:         e.pool.GetStats(),
	}
}
