package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"unibase/internal/game"
	"unibase/internal/logbook"
)

type fakeCommander struct {
	calls []string
}

func (f *fakeCommander) View() game.View {
	return game.NewView(game.NewState())
}

func (f *fakeCommander) ManualPost() (game.Outcome, error) {
	f.calls = append(f.calls, "post")
	return game.Outcome{Tag: game.TagPost, Message: "ok"}, nil
}

func (f *fakeCommander) PitchInvestors() (game.Outcome, error) {
	f.calls = append(f.calls, "pitch")
	return game.Outcome{Tag: game.TagWarn, Message: "no"}, game.ErrInsufficientUsers
}

func (f *fakeCommander) PurchaseUnit(id string) (game.Outcome, error) {
	f.calls = append(f.calls, "buy:"+id)
	return game.Outcome{Tag: game.TagApp, Message: "ok"}, nil
}

func (f *fakeCommander) Prestige() (game.Outcome, error) {
	f.calls = append(f.calls, "ipo")
	return game.Outcome{Tag: game.TagReset, Message: "ok"}, nil
}

func TestRunLineModeDispatchesCommands(t *testing.T) {
	g := &fakeCommander{}
	in := strings.NewReader("post\n\nPITCH\nbuy dev_core\nbuy\nipo\nquit\npost\n")
	var out bytes.Buffer

	if err := runLineMode(context.Background(), g, logbook.New(0, nil), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"post", "pitch", "buy:dev_core", "ipo"}
	if strings.Join(g.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls got %v want %v", g.calls, want)
	}
	if !strings.Contains(out.String(), "usage: buy <unit-id>") {
		t.Fatalf("missing usage hint in %q", out.String())
	}
}

func TestRunLineModeStopsAtEOF(t *testing.T) {
	g := &fakeCommander{}
	if err := runLineMode(context.Background(), g, logbook.New(0, nil), strings.NewReader("post"), &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.calls) != 1 {
		t.Fatalf("calls got %v", g.calls)
	}
}
