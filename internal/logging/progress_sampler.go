package logging

// ProgressSampler thins out progress logs for long loops: it emits once per
// percentage bucket and always on the final item.
type ProgressSampler struct {
	bucketSize int
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 100 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether done out of total items warrants a log line.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 || done <= 0 {
		return false
	}
	final := 100/s.bucketSize + 1
	if done >= total {
		if s.lastBucket == final {
			return false
		}
		s.lastBucket = final
		return true
	}
	bucket := done * 100 / total / s.bucketSize
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}
