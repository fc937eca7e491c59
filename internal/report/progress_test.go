package report

import "testing"

func TestProgressLoggerPercentClampsToRange(t *testing.T) {
	pl := &ProgressLogger{lo: 100, hi: 200}

	cases := []struct {
		p    uint64
		want uint64
	}{
		{50, 0},
		{100, 0},
		{150, 50},
		{199, 99},
		{200, 100},
		{500, 100},
	}
	for _, c := range cases {
		if got := pl.percent(c.p); got != c.want {
			t.Fatalf("percent(%d) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestProgressLoggerDisabledDoesNotPanic(t *testing.T) {
	pl := NewProgressLogger(2, 1000, "prefix: ", "", false)
	pl.Log(500)
	pl.Finalize()
}

func TestProgressLoggerEmptyRangeIsAlwaysComplete(t *testing.T) {
	pl := &ProgressLogger{lo: 10, hi: 10}
	if got := pl.percent(10); got != 100 {
		t.Fatalf("percent on empty range = %d, want 100", got)
	}
}
