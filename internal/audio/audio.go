package audio

// Device describes an audio device as reported by the host's audio subsystem
type Device struct {
	Index             int
	Name              string
	HostAPI           int
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Input reports whether the device can capture audio
func (d Device) Input() bool {
	return d.MaxInputChannels > 0
}

// Source defines the interface for the audio capture subsystem
type Source interface {
	// Devices returns every device the subsystem knows about, in
	// subsystem-reported order, input-capable or not.
	Devices() ([]Device, error)

	// OpenInputStream opens a capture stream on the device at the given
	// index, sized so each Read yields chunkSize bytes. A negative index
	// selects the subsystem's default input device.
	OpenInputStream(deviceIndex, chunkSize int) (Stream, error)

	Close() error
}

// Stream is an open capture stream
type Stream interface {
	// Read blocks until a full buffer is captured and returns it as
	// little-endian 16-bit PCM bytes.
	Read(chunkSize int) ([]byte, error)

	Close() error
}
