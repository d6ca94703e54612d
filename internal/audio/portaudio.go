package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// bytesPerSample is the width of one 16-bit PCM sample.
const bytesPerSample = 2

type portAudioSource struct{}

// New creates a new PortAudio-based audio source
func New() (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioSource{}, nil
}

func (p *portAudioSource) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	apis, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate host APIs: %w", err)
	}

	result := make([]Device, 0, len(infos))
	for i, info := range infos {
		result = append(result, Device{
			Index:             i,
			Name:              info.Name,
			HostAPI:           hostAPIIndex(apis, info.HostApi),
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}

	return result, nil
}

func (p *portAudioSource) OpenInputStream(deviceIndex, chunkSize int) (Stream, error) {
	frames := chunkSize / bytesPerSample
	if frames <= 0 {
		return nil, fmt.Errorf("chunk size %d too small for 16-bit samples", chunkSize)
	}

	var device *portaudio.DeviceInfo
	if deviceIndex < 0 {
		var err error
		device, err = portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
	} else {
		infos, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		if deviceIndex >= len(infos) {
			return nil, fmt.Errorf("device index %d out of range", deviceIndex)
		}
		device = infos[deviceIndex]
	}

	// Mono 16-bit blocking stream, one chunk per buffer
	buffer := make([]int16, frames)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: len(buffer),
	}, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	return &portAudioStream{stream: stream, buffer: buffer}, nil
}

func (p *portAudioSource) Close() error {
	portaudio.Terminate()
	return nil
}

type portAudioStream struct {
	stream *portaudio.Stream
	buffer []int16
}

func (s *portAudioStream) Read(chunkSize int) ([]byte, error) {
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("failed to read audio buffer: %w", err)
	}

	out := bytesFromSamples(s.buffer)
	if len(out) > chunkSize {
		out = out[:chunkSize]
	}
	return out, nil
}

func (s *portAudioStream) Close() error {
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}

// bytesFromSamples converts 16-bit samples to little-endian bytes
func bytesFromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}

// hostAPIIndex resolves the positional index of a device's host API
func hostAPIIndex(apis []*portaudio.HostApiInfo, api *portaudio.HostApiInfo) int {
	for i, a := range apis {
		if a == api {
			return i
		}
	}
	return 0
}
