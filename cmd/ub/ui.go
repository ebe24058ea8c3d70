package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"unibase/internal/game"
	"unibase/internal/logbook"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
	muted       = color.New(color.FgHiBlack)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptConfirm(label string) (bool, error) {
	answer, err := promptChoice(label, []string{"y", "n"}, "n")
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

func renderView(v game.View) {
	accent.Printf("\n== %s · Prestige %d ==\n", v.Stage.Name, v.PrestigeLevel)
	fmt.Printf("Users:            %s\n", game.FormatNumber(v.Users))
	fmt.Printf("Fund:             %s\n", game.FormatNumber(v.Fund))
	fmt.Printf("Users/sec:        %s\n", game.FormatNumber(v.UsersPerSec))
	fmt.Printf("Growth bonus:     x%.2f\n", v.GrowthBonus)
	fmt.Printf("Revenue/user:     %.2f\n", v.RevenuePerUser)
	fmt.Printf("Market share:     %.1f%% vs %s competitor users\n", v.MarketShare, game.FormatNumber(v.CompetitorUsers))
	if v.CanIPO {
		success.Println("IPO available. Run `ipo` to take the Base App public.")
	} else {
		fmt.Printf("IPO:              needs %s users and %s Fund\n", game.FormatNumber(game.IPOUsersFloor), game.FormatNumber(game.IPOFundFloor))
	}

	fmt.Println()
	accent.Println("Units")
	fmt.Printf("%-16s %-18s %6s %10s %10s  %s\n", "ID", "NAME", "OWNED", "COST", "RATE", "STATUS")
	for _, u := range v.Units {
		fmt.Printf("%-16s %-18s %6d %10s %10s  %s\n",
			u.ID, u.Name, u.Owned, game.FormatNumber(u.Cost), game.FormatNumber(u.BaseRate)+"/s", colorizeUnitStatus(u))
	}

	fmt.Println()
	accent.Println("Sectors")
	for _, s := range v.Sectors {
		line := fmt.Sprintf("%-24s %s", s.Name, s.Description)
		switch s.Status {
		case game.SectorCompleted:
			success.Println("✓ " + line)
		case game.SectorActive:
			warn.Println("▶ " + line)
		default:
			muted.Println("· " + line)
		}
	}
	fmt.Println()
}

func colorizeUnitStatus(u game.UnitView) string {
	switch u.Status {
	case game.UnitAffordable:
		return success.Sprint("ready")
	case game.UnitUnaffordable:
		return warn.Sprint("need fund")
	default:
		return muted.Sprintf("unlocks at %s", game.FormatNumber(u.UnlockFund))
	}
}

func renderOutcome(out game.Outcome) {
	msg := fmt.Sprintf("[%s] %s", out.Tag, out.Message)
	switch out.Tag {
	case game.TagWarn:
		printWarn(msg)
	case game.TagFund, game.TagReset:
		accent.Println(msg)
	default:
		printSuccess(msg)
	}
}

func renderEntries(entries []logbook.Entry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s\n", muted.Sprintf("[%s]", e.At.Format("15:04:05")), tagColor(e.Tag).Sprintf("[%s]", e.Tag), e.Message)
	}
}

func tagColor(tag game.Tag) *color.Color {
	switch tag {
	case game.TagWarn:
		return warn
	case game.TagFund, game.TagReset:
		return accent
	case game.TagPost, game.TagApp:
		return success
	}
	return neutral
}
