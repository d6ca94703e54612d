package client

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/khutes/buddy-audio/internal/audio"
	"github.com/rs/zerolog"
)

// DefaultChunkSize is the number of PCM bytes read and forwarded per iteration.
const DefaultChunkSize = 1024

// noDevice marks an empty device selection.
const noDevice = -1

// ErrNotConnected is returned when StreamLoop runs without a live connection.
var ErrNotConnected = errors.New("client is not connected")

// DialFunc opens the transport connection
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

type Config struct {
	Host           string
	Port           int
	ChunkSize      int
	ConnectTimeout time.Duration
	Source         audio.Source
	Logger         zerolog.Logger
	Dial           DialFunc // Optional - defaults to net.DialTimeout
}

// Client streams raw PCM chunks from a local capture device to a TCP server.
// The socket and stream handles are owned exclusively by the client; the
// streaming loop is expected to run on a single dedicated goroutine.
type Client struct {
	host           string
	port           int
	chunkSize      int
	connectTimeout time.Duration
	source         audio.Source
	log            zerolog.Logger
	dial           DialFunc

	mu          sync.Mutex
	conn        net.Conn
	stream      audio.Stream
	deviceIndex int
	connected   bool
	streaming   atomic.Bool
}

func New(cfg Config) *Client {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	dial := cfg.Dial
	if dial == nil {
		dial = net.DialTimeout
	}

	return &Client{
		host:           cfg.Host,
		port:           cfg.Port,
		chunkSize:      chunkSize,
		connectTimeout: timeout,
		source:         cfg.Source,
		log:            cfg.Logger,
		dial:           dial,
		deviceIndex:    noDevice,
	}
}

// Connect opens the TCP connection, sends the chunk-size handshake and opens
// the capture stream on the selected device. A timeout or refused connection
// is not an error: it returns (false, nil) and leaves the client disconnected.
func (c *Client) Connect() (bool, error) {
	// Dial without holding the lock so Connected/Disconnect stay
	// responsive for the full connect timeout.
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return true, nil
	}
	deviceIndex := c.deviceIndex
	c.mu.Unlock()

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	conn, err := c.dial("tcp", addr, c.connectTimeout)
	if err != nil {
		if refusedOrTimedOut(err) {
			c.log.Warn().Err(err).Str("addr", addr).Msg("Server unreachable")
			return false, nil
		}
		return false, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	// Handshake: the chunk size as a decimal string, no delimiter. The
	// server sizes its reads from this first message.
	if _, err := conn.Write([]byte(strconv.Itoa(c.chunkSize))); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to send chunk size: %w", err)
	}

	stream, err := c.source.OpenInputStream(deviceIndex, c.chunkSize)
	if err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to open input stream: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		// Another Connect won the race; keep its handles
		stream.Close()
		conn.Close()
		return true, nil
	}

	c.conn = conn
	c.stream = stream
	c.connected = true
	c.streaming.Store(true)

	c.log.Info().Str("addr", addr).Int("chunk_size", c.chunkSize).Msg("Connected")
	return true, nil
}

// StreamLoop blocks reading one chunk at a time from the capture stream and
// forwarding it verbatim to the socket, until the continuation flag is
// cleared. Short buffers are forwarded as-is. Any read or write error is
// terminal: the loop returns it and the caller must Disconnect.
func (c *Client) StreamLoop() error {
	c.mu.Lock()
	conn, stream := c.conn, c.stream
	c.mu.Unlock()

	if conn == nil || stream == nil {
		return ErrNotConnected
	}

	for c.streaming.Load() {
		buf, err := stream.Read(c.chunkSize)
		if err != nil {
			// Disconnect closes the handles under a blocked read; the
			// resulting failure is a clean stop, not a fault.
			if !c.streaming.Load() {
				return nil
			}
			return fmt.Errorf("audio read failed: %w", err)
		}
		if _, err := conn.Write(buf); err != nil {
			if !c.streaming.Load() {
				return nil
			}
			return fmt.Errorf("socket write failed: %w", err)
		}
	}

	return nil
}

// Stop clears the continuation flag. The loop observes it on its next
// iteration; handles stay open until Disconnect.
func (c *Client) Stop() {
	c.streaming.Store(false)
}

// Disconnect closes the capture stream and the socket and resets all state.
// Safe to call when never connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.streaming.Store(false)

	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close audio stream")
		}
		c.stream = nil
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close socket")
		}
		c.conn = nil
	}

	if c.connected {
		c.log.Info().Msg("Disconnected")
	}
	c.connected = false
}

// ListInputDevices returns the input-capable devices in subsystem order
func (c *Client) ListInputDevices() ([]audio.Device, error) {
	devices, err := c.source.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	inputs := make([]audio.Device, 0, len(devices))
	for _, d := range devices {
		if d.Input() {
			inputs = append(inputs, d)
		}
	}

	return inputs, nil
}

// ListInputDeviceNames returns the names of the input-capable devices,
// positionally aligned with ListInputDevices
func (c *Client) ListInputDeviceNames() ([]string, error) {
	devices, err := c.ListInputDevices()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}

	return names, nil
}

// SelectInputDevice records the index of the input-capable device with the
// given name. A name that matches nothing, or an empty device list, clears
// the selection back to the subsystem default. Never an error.
func (c *Client) SelectInputDevice(name string) {
	devices, err := c.ListInputDevices()
	if err != nil {
		c.log.Warn().Err(err).Msg("Device enumeration failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range devices {
		if d.Name == name {
			c.deviceIndex = d.Index
			c.log.Info().Str("device", name).Int("index", d.Index).Msg("Selected input device")
			return
		}
	}

	c.deviceIndex = noDevice
	c.log.Debug().Str("device", name).Msg("No such input device, selection cleared")
}

// SelectedDevice returns the selected device index and whether one is set
func (c *Client) SelectedDevice() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deviceIndex == noDevice {
		return 0, false
	}
	return c.deviceIndex, true
}

// Connected reports whether a socket is currently open
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Streaming reports whether the continuation flag is set
func (c *Client) Streaming() bool {
	return c.streaming.Load()
}

// Addr returns the configured server address
func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// refusedOrTimedOut reports whether a dial failure is one the client absorbs
func refusedOrTimedOut(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
