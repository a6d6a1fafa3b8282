package model

import (
	"errors"
	"testing"

	"github.com/mj1618/android-cli/internal/core"
)

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("[0,100][200,300]")
	if err != nil {
		t.Fatal(err)
	}
	want := Bounds{X1: 0, Y1: 100, X2: 200, Y2: 300}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
	x, y := b.Center()
	if x != 100 || y != 200 {
		t.Errorf("center: got (%d,%d), want (100,200)", x, y)
	}
	if b.Width() != 200 || b.Height() != 200 {
		t.Errorf("size: got %dx%d", b.Width(), b.Height())
	}
	if b.String() != "[0,100][200,300]" {
		t.Errorf("String: got %q", b.String())
	}
}

func TestParseBounds_Malformed(t *testing.T) {
	tests := []string{
		"[1,2]",
		"",
		"0,0,10,10",
		"[0,0][10,10]x",
		" [0,0][10,10]",
		"[a,0][10,10]",
		"[-1,0][10,10]",
		"[0,0] [10,10]",
		"[10,0][5,10]",
		"[0,10][10,5]",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := ParseBounds(s)
			if err == nil {
				t.Fatalf("expected error for %q", s)
			}
			if !errors.Is(err, core.ErrParse) {
				t.Errorf("expected parse error kind, got %v", err)
			}
		})
	}
}

func TestBoundsCenter_FloorsOddSizes(t *testing.T) {
	tests := []struct {
		b     Bounds
		wantX int
		wantY int
	}{
		{Bounds{0, 0, 1, 1}, 0, 0},
		{Bounds{0, 0, 3, 5}, 1, 2},
		{Bounds{10, 20, 21, 41}, 15, 30},
		{Bounds{7, 7, 7, 7}, 7, 7},
	}
	for _, tt := range tests {
		x, y := tt.b.Center()
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("%v center: got (%d,%d), want (%d,%d)", tt.b, x, y, tt.wantX, tt.wantY)
		}
	}
}
