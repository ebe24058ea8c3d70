package main

import (
	"testing"

	"unibase/internal/game"

	"github.com/fatih/color"
)

func TestTagColor(t *testing.T) {
	tests := []struct {
		tag  game.Tag
		want *color.Color
	}{
		{tag: game.TagSystem, want: neutral},
		{tag: game.TagWarn, want: warn},
		{tag: game.TagFund, want: accent},
		{tag: game.TagReset, want: accent},
		{tag: game.TagPost, want: success},
		{tag: game.TagApp, want: success},
	}
	for _, tc := range tests {
		if got := tagColor(tc.tag); got != tc.want {
			t.Fatalf("%s: wrong color", tc.tag)
		}
	}
}
