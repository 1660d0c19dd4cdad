package memutil

// Statistics summarizes one queue's buffer population.
type Statistics struct {
	BufferCount int
	BufferBytes int
	QueuedCount int
	MappedCount int
}

func (s *Statistics) Clear() {
	s.BufferCount = 0
	s.BufferBytes = 0
	s.QueuedCount = 0
	s.MappedCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BufferCount += other.BufferCount
	s.BufferBytes += other.BufferBytes
	s.QueuedCount += other.QueuedCount
	s.MappedCount += other.MappedCount
}

func (s *Statistics) AddBuffer(size int) {
	s.BufferCount++
	s.BufferBytes += size
}
