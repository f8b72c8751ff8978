// Package games detects running games by polling the process list.
package games

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// PollInterval is how often the process list is read.
const PollInterval = 5 * time.Second

// Game is a tracked game process.
type Game struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Process string `json:"process"`
	PID     int    `json:"pid"`
}

// knownGames maps lower-cased executable names to game ids.
var knownGames = map[string]string{
	"boplbattle.exe":        "bopl-battle",
	"javaw.exe":             "minecraft-java",
	"minecraft.windows.exe": "minecraft-bedrock",
}

// Watcher tracks running games and reports when play starts and stops.
type Watcher struct {
	logger   *slog.Logger
	interval time.Duration
	list     func(ctx context.Context) ([]Process, error)

	mu      sync.Mutex
	running map[int]Game
	playing bool

	OnStart func(Game)
	OnStop  func()
}

func NewWatcher(logger *slog.Logger) *Watcher {
	return &Watcher{
		logger:   logger,
		interval: PollInterval,
		list:     ListProcesses,
		running:  make(map[int]Game),
	}
}

// Add tracks a game reported by the launcher. It reports false when the
// pid is already tracked.
func (w *Watcher) Add(g Game) bool {
	w.mu.Lock()
	if _, ok := w.running[g.PID]; ok {
		w.mu.Unlock()
		return false
	}
	w.running[g.PID] = g
	start := w.transition()
	w.mu.Unlock()

	w.logger.Info("game added", "id", g.ID, "name", g.Name, "pid", g.PID)
	if start != nil {
		start()
	}
	return true
}

// Running returns the tracked games.
func (w *Watcher) Running() []Game {
	w.mu.Lock()
	defer w.mu.Unlock()

	games := make([]Game, 0, len(w.running))
	for _, g := range w.running {
		games = append(games, g)
	}
	return games
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Poll(ctx); err != nil {
				w.logger.Warn("failed to list processes", "error", err)
			}
		}
	}
}

// Poll reads the process list once, picks up known games and drops tracked
// games whose process is gone.
func (w *Watcher) Poll(ctx context.Context) error {
	procs, err := w.list(ctx)
	if err != nil {
		return err
	}

	alive := make(map[int]bool, len(procs))
	w.mu.Lock()
	for _, p := range procs {
		alive[p.PID] = true
		id, ok := knownGames[strings.ToLower(p.Name)]
		if !ok {
			continue
		}
		if _, tracked := w.running[p.PID]; tracked {
			continue
		}
		w.running[p.PID] = Game{ID: id, Name: p.Name, Process: p.Name, PID: p.PID}
		w.logger.Info("game detected", "id", id, "pid", p.PID)
	}
	for pid, g := range w.running {
		if !alive[pid] {
			delete(w.running, pid)
			w.logger.Info("game exited", "id", g.ID, "pid", pid)
		}
	}
	notify := w.transition()
	w.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// transition returns the callback for a change of the playing state.
// w.mu must be held.
func (w *Watcher) transition() func() {
	switch {
	case len(w.running) > 0 && !w.playing:
		w.playing = true
		var first Game
		for _, g := range w.running {
			first = g
			break
		}
		if w.OnStart != nil {
			return func() { w.OnStart(first) }
		}
	case len(w.running) == 0 && w.playing:
		w.playing = false
		if w.OnStop != nil {
			return w.OnStop
		}
	}
	return nil
}
