package sim

import (
	"testing"
	"time"

	"github.com/san-kum/driftfield/internal/config"
)

func benchmarkFrame(b *testing.B, count, workers int) {
	cfg := config.DefaultConfig()
	cfg.Field.Count = count
	cfg.Loop.Workers = workers
	l, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	l.PointerMove(640, 360)
	now := time.Now()
	step := cfg.FrameInterval()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		now = now.Add(step)
		l.Frame(now)
	}
}

func BenchmarkFrame120(b *testing.B) {
	benchmarkFrame(b, 120, 1)
}

func BenchmarkFrame1000(b *testing.B) {
	benchmarkFrame(b, 1000, 1)
}

func BenchmarkFrame1000Parallel(b *testing.B) {
	benchmarkFrame(b, 1000, 4)
}
