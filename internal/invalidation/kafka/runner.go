// Package kafka consumes dataset change events and drops the cached
// views they invalidate.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/invalidation"
)

// Invalidator drops every cached view of a dataset. Satisfied by
// viewstore.ViewStore.
type Invalidator interface {
	Invalidate(ctx context.Context, dataset string) (int, error)
}

// Locator maps a geographic bounding box to the datasets whose
// footprint intersects it. Satisfied by footprint.Index.
type Locator interface {
	Datasets(ctx context.Context, bb model.GeoBBox) ([]string, error)
}

type Runner struct {
	log      *slog.Logger
	cfg      Config
	store    Invalidator
	loc      Locator
	ms       *metricSet
	seq      *seqDedupe
	assigned atomic.Bool
	assignMu sync.RWMutex
	assign   map[int32]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

type Options struct {
	Logger   *slog.Logger
	Register prometheus.Registerer
	Locator  Locator
}

func New(cfg Config, store Invalidator, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		log:    opts.Logger,
		cfg:    cfg,
		store:  store,
		loc:    opts.Locator,
		ms:     newMetricSet(opts.Register),
		seq:    newSeqDedupe(8192),
		assign: map[int32]struct{}{},
	}
}

func (r *Runner) Start(ctx context.Context) error {
	if r.cfg.Driver != DriverKafka || !r.cfg.Enabled {
		r.log.Info("invalidation runner disabled", "driver", r.cfg.Driver, "enabled", r.cfg.Enabled)
		return nil
	}
	if r.store == nil {
		return errors.New("kafka runner: view store dependency is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = r.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = r.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = r.cfg.RebalanceTimeout
	if r.cfg.InitialOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(r.cfg.Brokers, r.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("consumer group: %w", err)
	}

	h := &groupHandler{
		setup: func(sess sarama.ConsumerGroupSession) {
			claims := sess.Claims()
			r.assignMu.Lock()
			r.assigned.Store(true)
			r.assign = map[int32]struct{}{}
			for _, parts := range claims {
				for _, p := range parts {
					r.assign[p] = struct{}{}
				}
			}
			r.assignMu.Unlock()
		},
		cleanup: func(sarama.ConsumerGroupSession) {
			r.assignMu.Lock()
			r.assigned.Store(false)
			r.assign = map[int32]struct{}{}
			r.assignMu.Unlock()
		},
		process: r.handleMessage,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if err := group.Close(); err != nil {
				r.log.Error("kafka consumer group close", "err", err)
			}
		}()

		for {
			if err := group.Consume(ctx, []string{r.cfg.Topic}, h); err != nil {
				r.log.Error("kafka consume error", "err", err)
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for err := range group.Errors() {
			r.log.Error("kafka group error", "err", err)
		}
	}()

	r.log.Info("kafka invalidation runner started",
		"topic", r.cfg.Topic, "group", r.cfg.GroupID, "brokers", r.cfg.Brokers)
	return nil
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.log.Info("kafka invalidation runner stopped")
}

func (r *Runner) Readiness() (ready bool, partitions []int32) {
	if !r.assigned.Load() {
		return false, nil
	}
	r.assignMu.RLock()
	defer r.assignMu.RUnlock()
	for p := range r.assign {
		partitions = append(partitions, p)
	}
	return true, partitions
}

func (r *Runner) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	if !msg.Timestamp.IsZero() {
		r.ms.lagGauge.Set(time.Since(msg.Timestamp).Seconds())
	}

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		r.ms.msgs.WithLabelValues("error").Inc()
		return fmt.Errorf("decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		r.ms.msgs.WithLabelValues("error").Inc()
		return fmt.Errorf("validate: %w", err)
	}

	err := r.apply(ctx, ev)
	r.observe(ev.Op, err, time.Since(start))
	return err
}

func (r *Runner) observe(op string, err error, dur time.Duration) {
	if op == "" {
		op = "unknown"
	}
	if err != nil {
		r.ms.msgs.WithLabelValues("error").Inc()
	} else {
		r.ms.msgs.WithLabelValues("ok").Inc()
	}
	r.ms.proc.WithLabelValues(op).Observe(dur.Seconds())
}

func (r *Runner) apply(ctx context.Context, ev invalidation.Event) error {
	if !r.seq.shouldApply(dedupeKey(ev), ev.Seq) {
		r.ms.msgs.WithLabelValues("skip_seq").Inc()
		return nil
	}

	datasets, err := r.targets(ctx, ev)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		r.log.Debug("change event matched no datasets", "op", ev.Op)
		return nil
	}

	for _, ds := range datasets {
		n, err := r.store.Invalidate(ctx, ds)
		if err != nil {
			return fmt.Errorf("invalidate %q: %w", ds, err)
		}
		if n > 0 {
			r.ms.dropped.WithLabelValues(ds).Add(float64(n))
			r.log.Info("dropped cached views", "dataset", ds, "count", n, "op", ev.Op)
		}
	}
	return nil
}

func (r *Runner) targets(ctx context.Context, ev invalidation.Event) ([]string, error) {
	if ev.Dataset != "" {
		return []string{ev.Dataset}, nil
	}
	if r.loc == nil {
		return nil, errors.New("bbox event received but no footprint locator configured")
	}
	datasets, err := r.loc.Datasets(ctx, *ev.BBox)
	if err != nil {
		return nil, fmt.Errorf("footprint lookup: %w", err)
	}
	return datasets, nil
}

func dedupeKey(ev invalidation.Event) string {
	if ev.Dataset != "" {
		return "ds:" + ev.Dataset
	}
	bb := *ev.BBox
	return "bb:" + strconv.FormatFloat(bb.X1, 'f', 6, 64) + "," +
		strconv.FormatFloat(bb.Y1, 'f', 6, 64) + "," +
		strconv.FormatFloat(bb.X2, 'f', 6, 64) + "," +
		strconv.FormatFloat(bb.Y2, 'f', 6, 64)
}

type groupHandler struct {
	setup   func(sarama.ConsumerGroupSession)
	cleanup func(sarama.ConsumerGroupSession)
	process func(context.Context, *sarama.ConsumerMessage) error
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	if h.setup != nil {
		h.setup(sess)
	}
	return nil
}

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	if h.cleanup != nil {
		h.cleanup(sess)
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for msg := range claim.Messages() {
		if err := h.process(ctx, msg); err != nil {
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
