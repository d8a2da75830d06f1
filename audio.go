package multitrack

// AudioSink takes mono float32 audio in [-1, 1]. WriteAudio may block until
// the device has room for the buffer, which paces the writer.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is an audio device that hands out sinks.
type AudioContext interface {
	Output() AudioSink
	SampleRate() int
	Close() error
}
