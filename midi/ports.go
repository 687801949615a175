package midi

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds a port scan. CoreMIDI can hang.
const ScanTimeout = 3 * time.Second

var ErrScanTimeout = errors.New("midi port scan timed out")

// ListOutPorts returns the output ports, or ErrScanTimeout if the driver hangs.
func ListOutPorts(timeout time.Duration) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrScanTimeout
	}
}

// OutPortNames lists output port names.
func OutPortNames(timeout time.Duration) ([]string, error) {
	ports, err := ListOutPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names, nil
}

// MatchPort returns the index of the first name containing want
// (case-insensitive), or of the first name if want is empty.
func MatchPort(names []string, want string) int {
	if len(names) == 0 {
		return -1
	}
	if want == "" {
		return 0
	}
	want = strings.ToLower(want)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), want) {
			return i
		}
	}
	return -1
}

// OpenOutput opens the output port matching name and wraps it in an Output.
func OpenOutput(name string, opts Options) (*Output, error) {
	ports, err := ListOutPorts(ScanTimeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	idx := MatchPort(names, name)
	if idx < 0 {
		if len(ports) == 0 {
			return nil, errors.New("no MIDI output ports")
		}
		return nil, errors.Errorf("no MIDI output port matching %q", name)
	}

	port := ports[idx]
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", port.String())
	}
	out := NewOutput(send, opts)
	out.closer = port.Close
	out.portName = port.String()
	return out, nil
}

// PortName is the name of the opened port, if any.
func (o *Output) PortName() string {
	return o.portName
}

// CloseDriver releases the MIDI driver. Call once at exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
