package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"unibase/internal/game"
	"unibase/internal/metrics"
	"unibase/internal/store"

	"github.com/google/uuid"
)

const persistTimeout = 5 * time.Second

var ErrClosed = errors.New("runner closed")

type Options struct {
	TickEvery time.Duration
	Logger    *slog.Logger
}

// Runner owns an Engine. Ticks and commands share one mutex; readers use
// the last published View and never block on it.
type Runner struct {
	mu     sync.Mutex
	engine *game.Engine
	store  store.Store
	logger *slog.Logger
	every  time.Duration
	seq    uint64
	closed bool

	view atomic.Pointer[game.View]

	obsMu     sync.RWMutex
	observers map[int]func(game.View)
	nextObs   int

	// notifyMu orders delivery; views older than delivered are dropped.
	notifyMu  sync.Mutex
	delivered uint64

	saves       chan game.Snapshot
	quit        chan struct{}
	persistDone chan struct{}

	lifeMu   sync.Mutex
	cancel   context.CancelFunc
	tickDone chan struct{}
}

func NewRunner(state game.State, sink game.LogSink, st store.Store, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = time.Second
	}
	r := &Runner{
		engine:      game.NewEngine(state, sink),
		store:       st,
		logger:      opts.Logger,
		every:       opts.TickEvery,
		observers:   make(map[int]func(game.View)),
		saves:       make(chan game.Snapshot, 1),
		quit:        make(chan struct{}),
		persistDone: make(chan struct{}),
	}
	v := r.engine.View()
	r.view.Store(&v)
	metrics.Observe(v)
	go r.persistLoop()
	return r
}

// Start is a no-op on a running or closed Runner.
func (r *Runner) Start(ctx context.Context) {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.cancel != nil || r.isClosed() {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.tickDone = make(chan struct{})
	go r.tickLoop(ctx, r.tickDone)
	r.logger.Info("runner started", "tick_every", r.every.String())
}

func (r *Runner) tickLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

func (r *Runner) Stop() {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.tickDone
	r.cancel = nil
	r.logger.Info("runner stopped")
}

// Close rejects further mutations, drains pending saves and writes the
// final snapshot synchronously.
func (r *Runner) Close(ctx context.Context) error {
	r.Stop()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	snap := r.engine.Snapshot()
	r.mu.Unlock()

	// A Start racing the first Stop is refused now, but may already be ticking.
	r.Stop()
	close(r.quit)
	<-r.persistDone

	if err := r.store.Save(ctx, snap); err != nil {
		metrics.PersistFailures.Inc()
		return err
	}
	return nil
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Runner) View() game.View {
	return *r.view.Load()
}

// Subscribe registers fn to receive the View after every tick and command.
// Views arrive in mutation order; fn must not call back into the Runner.
func (r *Runner) Subscribe(fn func(game.View)) (cancel func()) {
	r.obsMu.Lock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	r.obsMu.Unlock()
	return func() {
		r.obsMu.Lock()
		delete(r.observers, id)
		r.obsMu.Unlock()
	}
}

func (r *Runner) Tick() game.TickReport {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return game.TickReport{}
	}
	rep := r.engine.Tick()
	view, seq := r.publishLocked(true)
	r.mu.Unlock()

	metrics.TicksTotal.Inc()
	r.notify(seq, view)
	return rep
}

func (r *Runner) ManualPost() (game.Outcome, error) {
	return r.command("post", func(e *game.Engine) (game.Outcome, error) { return e.ManualPost() })
}

func (r *Runner) PitchInvestors() (game.Outcome, error) {
	return r.command("pitch", func(e *game.Engine) (game.Outcome, error) { return e.PitchInvestors() })
}

func (r *Runner) PurchaseUnit(id string) (game.Outcome, error) {
	return r.command("buy", func(e *game.Engine) (game.Outcome, error) { return e.PurchaseUnit(id) })
}

func (r *Runner) Prestige() (game.Outcome, error) {
	return r.command("ipo", func(e *game.Engine) (game.Outcome, error) { return e.Prestige() })
}

func (r *Runner) command(name string, fn func(*game.Engine) (game.Outcome, error)) (game.Outcome, error) {
	commandID := uuid.NewString()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		metrics.Command(name, ErrClosed)
		r.logger.Warn("command after close", "command", name, "command_id", commandID)
		return game.Outcome{}, ErrClosed
	}
	out, err := fn(r.engine)
	// A rejected command leaves state untouched, so there is nothing to save.
	view, seq := r.publishLocked(err == nil)
	r.mu.Unlock()

	metrics.Command(name, err)
	if err != nil {
		r.logger.Info("command rejected", "command", name, "command_id", commandID, "kind", game.ErrorKind(err))
	} else {
		r.logger.Debug("command applied", "command", name, "command_id", commandID,
			"users_delta", out.UsersDelta, "fund_delta", out.FundDelta, "stage_changed", out.StageChanged)
	}
	r.notify(seq, view)
	return out, err
}

// publishLocked must be called with r.mu held so queued saves and sequence
// numbers keep mutation order.
func (r *Runner) publishLocked(save bool) (game.View, uint64) {
	view := r.engine.View()
	r.view.Store(&view)
	r.seq++
	metrics.Observe(view)
	if save {
		r.queueSave(r.engine.Snapshot())
	}
	return view, r.seq
}

// queueSave replaces any snapshot still waiting in the single slot.
func (r *Runner) queueSave(snap game.Snapshot) {
	select {
	case r.saves <- snap:
		return
	default:
	}
	select {
	case <-r.saves:
	default:
	}
	select {
	case r.saves <- snap:
	default:
	}
}

func (r *Runner) persistLoop() {
	defer close(r.persistDone)
	for {
		select {
		case <-r.quit:
			return
		case snap := <-r.saves:
			r.persist(snap)
		}
	}
}

func (r *Runner) persist(snap game.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := r.store.Save(ctx, snap); err != nil {
		metrics.PersistFailures.Inc()
		r.logger.Warn("persist snapshot failed", "err", err)
	}
}

func (r *Runner) notify(seq uint64, view game.View) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if seq <= r.delivered {
		return
	}
	r.delivered = seq

	r.obsMu.RLock()
	fns := make([]func(game.View), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.obsMu.RUnlock()
	for _, fn := range fns {
		fn(view)
	}
}
