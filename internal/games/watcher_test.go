package games

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestWatcher(procs *[]Process) (*Watcher, *[]string) {
	w := NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.list = func(context.Context) ([]Process, error) { return *procs, nil }

	var events []string
	w.OnStart = func(g Game) { events = append(events, "start:"+g.ID) }
	w.OnStop = func() { events = append(events, "stop") }
	return w, &events
}

func TestParseTasklist(t *testing.T) {
	out := `"System Idle Process","0","Services","0","8 K"
"BoplBattle.exe","4242","Console","1","210,112 K"
"broken"
"javaw.exe","notapid","Console","1","1 K"
`
	procs, err := parseTasklist(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parseTasklist() error = %v", err)
	}
	if len(procs) != 2 {
		t.Fatalf("parseTasklist() = %v, want 2 processes", procs)
	}
	if procs[1] != (Process{PID: 4242, Name: "BoplBattle.exe"}) {
		t.Errorf("procs[1] = %+v", procs[1])
	}
}

func TestParsePS(t *testing.T) {
	out := "    1 systemd\n  812 javaw.exe\n\nbad line\n"
	procs, err := parsePS(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parsePS() error = %v", err)
	}
	if len(procs) != 2 || procs[1] != (Process{PID: 812, Name: "javaw.exe"}) {
		t.Errorf("parsePS() = %+v", procs)
	}
}

func TestWatcher_StartStopTransitions(t *testing.T) {
	procs := []Process{{PID: 1, Name: "explorer.exe"}}
	w, events := newTestWatcher(&procs)
	ctx := context.Background()

	steps := []struct {
		name  string
		procs []Process
		want  []string
	}{
		{"no games", []Process{{1, "explorer.exe"}}, nil},
		{"game starts", []Process{{1, "explorer.exe"}, {10, "BOPLBATTLE.EXE"}}, []string{"start:bopl-battle"}},
		{"second game keeps playing", []Process{{10, "BoplBattle.exe"}, {11, "javaw.exe"}}, []string{"start:bopl-battle"}},
		{"one game left", []Process{{11, "javaw.exe"}}, []string{"start:bopl-battle"}},
		{"all gone", []Process{{1, "explorer.exe"}}, []string{"start:bopl-battle", "stop"}},
		{"still idle", nil, []string{"start:bopl-battle", "stop"}},
	}
	for _, st := range steps {
		procs = st.procs
		if err := w.Poll(ctx); err != nil {
			t.Fatalf("%s: Poll() error = %v", st.name, err)
		}
		if strings.Join(*events, ",") != strings.Join(st.want, ",") {
			t.Fatalf("%s: events = %v, want %v", st.name, *events, st.want)
		}
	}
}

func TestWatcher_AddManualGame(t *testing.T) {
	procs := []Process{{PID: 77, Name: "custom.exe"}}
	w, events := newTestWatcher(&procs)

	if !w.Add(Game{ID: "custom", Name: "Custom", Process: "custom.exe", PID: 77}) {
		t.Fatal("Add() = false for a new game")
	}
	if w.Add(Game{ID: "custom", PID: 77}) {
		t.Error("Add() = true for a tracked pid")
	}
	if len(*events) != 1 || (*events)[0] != "start:custom" {
		t.Fatalf("events = %v, want [start:custom]", *events)
	}

	// still alive: no change
	if err := w.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(w.Running()) != 1 {
		t.Errorf("Running() = %v, want the manual game", w.Running())
	}

	procs = nil
	if err := w.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(w.Running()) != 0 || (*events)[len(*events)-1] != "stop" {
		t.Errorf("after exit: running = %v, events = %v", w.Running(), *events)
	}
}

func TestWatcher_ListError(t *testing.T) {
	procs := []Process{}
	w, events := newTestWatcher(&procs)
	w.Add(Game{ID: "a", PID: 5})

	w.list = func(context.Context) ([]Process, error) { return nil, errors.New("denied") }
	if err := w.Poll(context.Background()); err == nil {
		t.Error("Poll() error = nil")
	}
	if len(w.Running()) != 1 || len(*events) != 1 {
		t.Error("a failed listing should not drop tracked games")
	}
}
