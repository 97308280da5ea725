// Package config holds the debugger client's configuration: command-line
// options and the arguments carried by DAP launch and attach requests.
package config

import (
	"encoding/json"
	"fmt"
)

// Options are the command-line settings of the client executable.
type Options struct {
	// DebugPort selects the DAP endpoint: 0 means stdio, anything else is a
	// TCP port to listen on for the editor.
	DebugPort int

	// InterfaceAddr is where the in-game interface service listens.
	InterfaceAddr string

	// LogPath enables file logging when non-empty. The DAP stream may own
	// stdout, so logs never go there.
	LogPath string
}

// DefaultOptions returns the settings used when no flags are given.
func DefaultOptions() Options {
	return Options{
		DebugPort:     0,
		InterfaceAddr: "127.0.0.1:10077",
	}
}

// LaunchArguments are the custom arguments of the DAP launch and attach
// requests.
type LaunchArguments struct {
	// SourceRoots are directories searched for Package/Classes/Class.uc
	// source files, in order.
	SourceRoots []string `json:"sourceRoots"`
}

// ParseLaunchArguments decodes the raw argument payload of a launch or
// attach request.
func ParseLaunchArguments(raw json.RawMessage) (*LaunchArguments, error) {
	args := &LaunchArguments{}
	if len(raw) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, args); err != nil {
		return nil, fmt.Errorf("parsing launch arguments: %w", err)
	}
	return args, nil
}
