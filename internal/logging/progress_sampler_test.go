package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize int
		wantSize   int
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"default bucket size for oversized", 150, 10},
		{"custom bucket size", 25, 25},
		{"small bucket size", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(5, 10) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for done := 1; done <= 100; done++ {
		if s.ShouldLog(done, 100) {
			logged = append(logged, done)
		}
	}
	want := []int{1, 25, 50, 75, 100}
	if len(logged) != len(want) {
		t.Fatalf("logged at %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged at %v, want %v", logged, want)
		}
	}
}

func TestProgressSampler_FinalOnlyOnce(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(3, 3) {
		t.Fatal("final item should log")
	}
	if s.ShouldLog(3, 3) {
		t.Fatal("final item should log once")
	}
}

func TestProgressSampler_SmallTotals(t *testing.T) {
	s := NewProgressSampler(10)
	count := 0
	for done := 1; done <= 3; done++ {
		if s.ShouldLog(done, 3) {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected every item of a 3-item run to log, got %d", count)
	}
}

func TestProgressSampler_IgnoresUnknownTotals(t *testing.T) {
	s := NewProgressSampler(10)
	if s.ShouldLog(1, 0) || s.ShouldLog(0, 10) {
		t.Fatal("zero totals or zero progress should not log")
	}
}
