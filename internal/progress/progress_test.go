package progress

import (
	"math"
	"testing"
)

func TestOnScroll(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		content  float64
		viewport float64
		want     float64
	}{
		{"start", 0, 900, 300, 0},
		{"middle of three steps", 300, 900, 300, 50},
		{"end", 600, 900, 300, 100},
		{"overscroll right", 700, 900, 300, 100},
		{"overscroll left", -40, 900, 300, 0},
		{"single step", 0, 300, 300, 0},
		{"single step with offset", 10, 300, 300, 0},
		{"content narrower than viewport", 5, 200, 300, 0},
		{"zero everything", 0, 0, 0, 0},
		{"nan offset", math.NaN(), 900, 300, 0},
		{"infinite content", 10, math.Inf(1), 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OnScroll(tt.offset, tt.content, tt.viewport)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("got non-finite %v", got)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnScrollMonotonic(t *testing.T) {
	const content, viewport = 1250.0, 250.0
	maxOffset := content - viewport

	prev := -1.0
	for x := 0.0; x <= maxOffset; x += 7.5 {
		got := OnScroll(x, content, viewport)
		if got < 0 || got > 100 {
			t.Fatalf("offset %v: %v out of bounds", x, got)
		}
		if got < prev {
			t.Fatalf("offset %v: %v decreased from %v", x, got, prev)
		}
		prev = got
	}
	if got := OnScroll(maxOffset, content, viewport); got != 100 {
		t.Fatalf("max offset: got %v, want 100", got)
	}
}

func TestPagerWalk(t *testing.T) {
	p := NewPager(3, 300)

	if p.Percent() != 0 {
		t.Fatalf("expected 0 at start, got %v", p.Percent())
	}
	if p.Prev() {
		t.Fatal("prev on first step should be a no-op")
	}

	if !p.Next() {
		t.Fatal("next from step 1 failed")
	}
	if p.Page() != 1 || p.Percent() != 50 {
		t.Fatalf("expected page 1 at 50%%, got page %d at %v", p.Page(), p.Percent())
	}

	p.Next()
	if p.Page() != 2 || p.Percent() != 100 {
		t.Fatalf("expected page 2 at 100%%, got page %d at %v", p.Page(), p.Percent())
	}
	if p.Next() {
		t.Fatal("next on last step should be a no-op")
	}

	p.Prev()
	if p.Page() != 1 {
		t.Fatalf("expected page 1 after prev, got %d", p.Page())
	}
}

func TestPagerSingleStep(t *testing.T) {
	p := NewPager(1, 80)
	if p.Next() {
		t.Fatal("single step pager should not advance")
	}
	if p.Percent() != 0 {
		t.Fatalf("expected 0, got %v", p.Percent())
	}
}

func TestPagerEmpty(t *testing.T) {
	p := NewPager(0, 80)
	if p.Next() || p.Prev() {
		t.Fatal("empty pager should not move")
	}
	if p.Page() != 0 || p.Percent() != 0 {
		t.Fatalf("unexpected state: page=%d pct=%v", p.Page(), p.Percent())
	}
}

func TestPagerResizeKeepsPage(t *testing.T) {
	p := NewPager(4, 100)
	p.Next()
	p.Next()

	p.Resize(60)
	if p.Page() != 2 {
		t.Fatalf("expected page 2 after resize, got %d", p.Page())
	}
	if p.Offset() != 120 {
		t.Fatalf("expected offset 120, got %v", p.Offset())
	}
}

func TestPagerScrollToClamps(t *testing.T) {
	p := NewPager(3, 300)
	p.ScrollTo(5000)
	if p.Offset() != 600 {
		t.Fatalf("expected clamp to 600, got %v", p.Offset())
	}
	p.ScrollTo(-10)
	if p.Offset() != 0 {
		t.Fatalf("expected clamp to 0, got %v", p.Offset())
	}
}
