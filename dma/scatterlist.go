package dma

// Segment is one physically contiguous chunk of a scatter list.
type Segment struct {
	Address DeviceAddress
	Length  int
}

// ScatterList describes a buffer as a sequence of physically discontiguous
// memory segments. A ScatterList is immutable once built.
type ScatterList struct {
	segments []Segment
	total    int
}

// NewScatterList builds a scatter list from segments. Segments must be
// non-empty and every length positive; violations are programmer errors.
func NewScatterList(segments []Segment) *ScatterList {
	if len(segments) == 0 {
		panic("attempted to build a scatter list with no segments")
	}

	total := 0
	copied := make([]Segment, len(segments))
	for i, segment := range segments {
		if segment.Length <= 0 {
			panic("attempted to build a scatter list containing a segment of non-positive length")
		}
		copied[i] = segment
		total += segment.Length
	}

	return &ScatterList{
		segments: copied,
		total:    total,
	}
}

// Segments returns the segment sequence. Callers must not modify it.
func (s *ScatterList) Segments() []Segment {
	return s.segments
}

// SegmentCount returns the number of physically contiguous segments.
func (s *ScatterList) SegmentCount() int {
	return len(s.segments)
}

// TotalLength returns the summed length of all segments in bytes.
func (s *ScatterList) TotalLength() int {
	return s.total
}
