package audio

// Segment is a run of PCM-16 mono samples at a fixed sample rate.
type Segment struct {
	Samples    []int16
	SampleRate int
}

// Silence returns a segment of durationMS milliseconds of silence.
func Silence(durationMS int64, sampleRate int) Segment {
	n := int(durationMS * int64(sampleRate) / 1000)
	return Segment{
		Samples:    make([]int16, n),
		SampleRate: sampleRate,
	}
}

// DurationMS returns the segment length in whole milliseconds.
func (s Segment) DurationMS() int64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return int64(len(s.Samples)) * 1000 / int64(s.SampleRate)
}

// Append concatenates next onto s with a linear crossfade of fadeMS
// milliseconds: the head of next is blended over the tail of s, so the
// result is shorter than the plain sum by the fade length. The fade is
// clamped to the shorter of the two segments. With fadeMS of zero this is
// a hard cut. Blending into trailing silence is allowed and simply fades
// the next segment in over the quiet tail.
func (s Segment) Append(next Segment, fadeMS int64) Segment {
	if len(s.Samples) == 0 {
		return next
	}
	if len(next.Samples) == 0 {
		return s
	}

	fade := int(fadeMS * int64(s.SampleRate) / 1000)
	if fade > len(s.Samples) {
		fade = len(s.Samples)
	}
	if fade > len(next.Samples) {
		fade = len(next.Samples)
	}

	out := make([]int16, len(s.Samples)+len(next.Samples)-fade)
	copy(out, s.Samples)

	// Overlap region: fade the tail of s out while fading the head of
	// next in.
	base := len(s.Samples) - fade
	for i := 0; i < fade; i++ {
		t := float64(i) / float64(fade)
		mixed := float64(s.Samples[base+i])*(1-t) + float64(next.Samples[i])*t
		out[base+i] = clampSample(mixed)
	}

	copy(out[len(s.Samples):], next.Samples[fade:])

	return Segment{Samples: out, SampleRate: s.SampleRate}
}

func clampSample(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
