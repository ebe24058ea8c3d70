package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"unibase/internal/game"
	"unibase/internal/logbook"
)

// commander is the slice of host.Runner the consoles drive.
type commander interface {
	View() game.View
	ManualPost() (game.Outcome, error)
	PitchInvestors() (game.Outcome, error)
	PurchaseUnit(id string) (game.Outcome, error)
	Prestige() (game.Outcome, error)
}

const lineHelp = "commands: post | pitch | buy <unit-id> | ipo | status | log | help | quit"

// runLineMode reads one command per line until quit, EOF or ctx ends.
func runLineMode(ctx context.Context, g commander, book *logbook.Book, in io.Reader, out io.Writer) error {
	renderEntries(book.Entries())
	fmt.Fprintln(out, lineHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := execLine(g, book, line, out); quit {
				return nil
			}
		}
	}
}

func execLine(g commander, book *logbook.Book, line string, out io.Writer) (quit bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}
	var (
		res game.Outcome
		err error
	)
	switch fields[0] {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(out, lineHelp)
		return false
	case "status", "s":
		renderView(g.View())
		return false
	case "log", "l":
		renderEntries(book.Tail(20))
		return false
	case "post", "p":
		res, err = g.ManualPost()
	case "pitch", "i":
		res, err = g.PitchInvestors()
	case "buy", "b":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: buy <unit-id>")
			return false
		}
		res, err = g.PurchaseUnit(fields[1])
	case "ipo":
		res, err = g.Prestige()
	default:
		fmt.Fprintf(out, "unknown command %q. %s\n", fields[0], lineHelp)
		return false
	}
	if err != nil && res.Message == "" {
		printError(err.Error())
		return false
	}
	renderOutcome(res)
	return false
}
