package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"unibase/internal/game"
	"unibase/internal/logbook"
	"unibase/internal/store"
)

type failingStore struct {
	store.MemoryStore
	saves atomic.Int64
}

func (f *failingStore) Save(context.Context, game.Snapshot) error {
	f.saves.Add(1)
	return errors.New("disk full")
}

func newTestRunner(t *testing.T, st store.Store, state game.State) (*Runner, *logbook.Book) {
	t.Helper()
	book := logbook.New(0, nil)
	r := NewRunner(state, book, st, Options{TickEvery: 5 * time.Millisecond})
	t.Cleanup(func() { r.Close(context.Background()) })
	return r, book
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestRunnerCommandsPublishView(t *testing.T) {
	r, book := newTestRunner(t, store.NewMemoryStore(), game.NewState())

	if _, err := r.ManualPost(); err != nil {
		t.Fatalf("post: %v", err)
	}
	if got := r.View().Users; got != game.ManualPostUsers {
		t.Fatalf("view users got %v want %v", got, game.ManualPostUsers)
	}
	if _, err := r.PitchInvestors(); !errors.Is(err, game.ErrInsufficientUsers) {
		t.Fatalf("expected ErrInsufficientUsers, got %v", err)
	}
	last := book.Tail(1)[0]
	if last.Tag != game.TagWarn {
		t.Fatalf("expected WARN line, got %+v", last)
	}
}

func TestRunnerPersistsAfterMutation(t *testing.T) {
	mem := store.NewMemoryStore()
	r, _ := newTestRunner(t, mem, game.NewState())

	if _, err := r.ManualPost(); err != nil {
		t.Fatalf("post: %v", err)
	}
	waitFor(t, func() bool {
		snap, err := mem.Load(context.Background())
		return err == nil && snap.Users == game.ManualPostUsers
	})
}

func TestRunnerCloseWritesFinalSnapshot(t *testing.T) {
	mem := store.NewMemoryStore()
	st := game.NewState()
	st.Fund = 500
	r := NewRunner(st, nil, mem, Options{})
	for i := 0; i < 5; i++ {
		r.ManualPost()
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	snap, err := mem.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Users != 5*game.ManualPostUsers {
		t.Fatalf("final users got %v", snap.Users)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestRunnerPersistFailureDoesNotStopSimulation(t *testing.T) {
	fs := &failingStore{}
	r := NewRunner(game.NewState(), nil, fs, Options{})
	for i := 0; i < 3; i++ {
		if _, err := r.ManualPost(); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}
	waitFor(t, func() bool { return fs.saves.Load() > 0 })
	if got := r.View().Users; got != 3*game.ManualPostUsers {
		t.Fatalf("users got %v", got)
	}
	if err := r.Close(context.Background()); err == nil {
		t.Fatalf("expected final save error")
	}
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	r, _ := newTestRunner(t, store.NewMemoryStore(), game.NewState())
	ctx := context.Background()

	r.Start(ctx)
	r.Start(ctx)
	waitFor(t, func() bool { return r.View().CompetitorUsers > game.StarterCompetitorUsers })
	r.Stop()
	r.Stop()

	frozen := r.View().CompetitorUsers
	time.Sleep(20 * time.Millisecond)
	if got := r.View().CompetitorUsers; got != frozen {
		t.Fatalf("ticks continued after Stop: %v -> %v", frozen, got)
	}
}

func TestRunnerObserversSeeEveryMutation(t *testing.T) {
	r, _ := newTestRunner(t, store.NewMemoryStore(), game.NewState())

	var mu sync.Mutex
	var seen []float64
	cancel := r.Subscribe(func(v game.View) {
		mu.Lock()
		seen = append(seen, v.Users)
		mu.Unlock()
	})
	r.ManualPost()
	r.Tick()
	cancel()
	r.ManualPost()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %v", seen)
	}
	if seen[0] != game.ManualPostUsers {
		t.Fatalf("first view users got %v", seen[0])
	}
}

func TestRunnerConcurrentCommandsAndTicks(t *testing.T) {
	st := game.NewState()
	st.Fund = 1_000_000
	r, _ := newTestRunner(t, store.NewMemoryStore(), st)
	r.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.ManualPost()
				r.PurchaseUnit("creator_junior")
				_ = r.View()
			}
		}()
	}
	wg.Wait()
	r.Stop()

	v := r.View()
	if v.Users < 8*50*game.ManualPostUsers {
		t.Fatalf("users got %v, expected at least %v", v.Users, 8*50*game.ManualPostUsers)
	}
	if v.Fund < 0 {
		t.Fatalf("fund went negative: %v", v.Fund)
	}
}

func TestRunnerRejectsMutationsAfterClose(t *testing.T) {
	mem := store.NewMemoryStore()
	r := NewRunner(game.NewState(), nil, mem, Options{})
	if _, err := r.ManualPost(); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	commands := []struct {
		name string
		run  func() (game.Outcome, error)
	}{
		{name: "post", run: r.ManualPost},
		{name: "pitch", run: r.PitchInvestors},
		{name: "buy", run: func() (game.Outcome, error) { return r.PurchaseUnit("creator_junior") }},
		{name: "ipo", run: r.Prestige},
	}
	for _, tc := range commands {
		if _, err := tc.run(); !errors.Is(err, ErrClosed) {
			t.Fatalf("%s: expected ErrClosed, got %v", tc.name, err)
		}
	}
	r.Tick()
	r.Start(context.Background())

	if got := r.View().Users; got != game.ManualPostUsers {
		t.Fatalf("view changed after close: users %v", got)
	}
	snap, err := mem.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Users != r.View().Users || snap.CompetitorUsers != r.View().CompetitorUsers {
		t.Fatalf("persisted %+v diverges from live view", snap)
	}
}

func TestRunnerNotifyDropsStaleViews(t *testing.T) {
	r, _ := newTestRunner(t, store.NewMemoryStore(), game.NewState())

	var seen []float64
	r.Subscribe(func(v game.View) { seen = append(seen, v.Users) })

	r.notify(2, game.View{Users: 20})
	r.notify(1, game.View{Users: 10})
	r.notify(2, game.View{Users: 20})
	r.notify(3, game.View{Users: 30})

	if len(seen) != 2 || seen[0] != 20 || seen[1] != 30 {
		t.Fatalf("expected [20 30], got %v", seen)
	}
}

func TestRunnerObserversSeeMutationOrder(t *testing.T) {
	r, _ := newTestRunner(t, store.NewMemoryStore(), game.NewState())

	var mu sync.Mutex
	var users []float64
	r.Subscribe(func(v game.View) {
		mu.Lock()
		users = append(users, v.Users)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.ManualPost()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Tick()
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(users); i++ {
		if users[i] < users[i-1] {
			t.Fatalf("view %d went backwards: %v -> %v", i, users[i-1], users[i])
		}
	}
	if last := users[len(users)-1]; last != r.View().Users {
		t.Fatalf("last delivered users %v, live %v", last, r.View().Users)
	}
}
