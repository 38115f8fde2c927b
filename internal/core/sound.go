package core

// SoundChannels is the number of interleaved channels in every sample frame.
const SoundChannels = 2

// BytesPerSampleFrame is the size of one interleaved 16-bit stereo frame.
const BytesPerSampleFrame = SoundChannels * 2

// SoundBuffer is the request a module fills in GetSoundSamples.
// Samples holds SampleCount interleaved stereo frames (2*SampleCount values).
type SoundBuffer struct {
	SamplesPerSecond int
	SampleCount      int
	Samples          []int16
}

// Frame returns the left/right pair at index i.
func (s *SoundBuffer) Frame(i int) (left, right int16) {
	return s.Samples[2*i], s.Samples[2*i+1]
}

// SetFrame writes the left/right pair at index i.
func (s *SoundBuffer) SetFrame(i int, left, right int16) {
	s.Samples[2*i] = left
	s.Samples[2*i+1] = right
}

// Silence zeroes the requested frames.
func (s *SoundBuffer) Silence() {
	clear(s.Samples[:2*s.SampleCount])
}
