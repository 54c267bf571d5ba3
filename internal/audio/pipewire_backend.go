package audio

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PipeWireBackend captures through pw-record.
type PipeWireBackend struct {
	// Target node, empty or "default" for the default source
	Target    string
	LogWriter io.Writer
}

// Open prepares a pw-record capture into path.
func (p *PipeWireBackend) Open(path string, format Format, notify Notify) (Capture, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if _, err := lookPath("pw-record"); err != nil {
		return nil, fmt.Errorf("pw-record not found: %w", err)
	}

	return newProcessCapture(path, pwRecordArgs(p.Target, format, path), nil, notify, p.LogWriter), nil
}

func pwRecordArgs(target string, format Format, path string) []string {
	args := []string{
		"pw-record",
		"--rate", strconv.Itoa(format.SampleRate),
		"--channels", strconv.Itoa(format.Channels),
		"--format", "s16",
	}
	if target != "" && target != "default" {
		args = append(args, "--target", target)
	}
	return append(args, path)
}

// ListSources returns available PipeWire ports
func (p *PipeWireBackend) ListSources() ([]string, error) {
	pw := NewPipeWire()
	return pw.ListPorts()
}

// ValidateSource accepts a port name or a node name that owns ports.
func (p *PipeWireBackend) ValidateSource(source string) error {
	if source == "" || source == "default" || source == "disabled" {
		return nil
	}

	pw := NewPipeWire()
	ports, err := pw.ListPorts()
	if err != nil {
		return err
	}
	for _, port := range ports {
		if strings.HasPrefix(port, source+":") {
			return nil
		}
	}
	return validatePortInList(source, ports)
}

// GetType returns the backend type
func (p *PipeWireBackend) GetType() BackendType {
	return BackendTypePipeWire
}
