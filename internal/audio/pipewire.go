package audio

import (
	"fmt"
	"os/exec"
	"strings"
)

// PipeWire lists and validates PipeWire ports through pw-link.
type PipeWire struct{}

// NewPipeWire creates a new PipeWire instance
func NewPipeWire() *PipeWire {
	return &PipeWire{}
}

// ListPorts returns all available ports via PipeWire
func (pw *PipeWire) ListPorts() ([]string, error) {
	cmd := exec.Command("pw-link", "-io")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list PipeWire ports: %w", err)
	}

	return parsePorts(string(output)), nil
}

func parsePorts(output string) []string {
	var ports []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "Input ports:") && !strings.HasPrefix(line, "Output ports:") {
			ports = append(ports, line)
		}
	}
	return ports
}

// validatePortInList requires exactly one port named portName.
func validatePortInList(portName string, allPorts []string) error {
	duplicates := findPortDuplicatesInList(portName, allPorts)

	if len(duplicates) == 0 {
		return fmt.Errorf("port not found: %s", portName)
	}
	if len(duplicates) > 1 {
		return fmt.Errorf("duplicate sources detected for '%s': %v. Please close conflicting applications", portName, duplicates)
	}

	return nil
}

// findPortDuplicatesInList finds all ports with exactly the same name
func findPortDuplicatesInList(portName string, allPorts []string) []string {
	var duplicates []string
	for _, port := range allPorts {
		if port == portName {
			duplicates = append(duplicates, port)
		}
	}

	return duplicates
}
