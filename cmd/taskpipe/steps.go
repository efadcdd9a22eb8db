package main

import (
	"github.com/kestrelrun/taskpipe/internal/planconfig"
	"github.com/kestrelrun/taskpipe/internal/steps/fscopy"
	"github.com/kestrelrun/taskpipe/internal/steps/gitsync"
	"github.com/kestrelrun/taskpipe/internal/steps/shellcmd"
)

// buildRegistry wires every concrete step package this CLI ships with into
// a planconfig.Registry, the demo consumer's analogue of
// internal/plugins_import.go's plugin registration.
func buildRegistry() *planconfig.Registry[AppConfig] {
	reg := planconfig.NewRegistry[AppConfig]()

	reg.Register("fscopy", map[string]any{
		"buffer_size": 32 * 1024,
	}, fscopy.New[AppConfig])

	reg.Register("gitsync", map[string]any{
		"depth": 1,
	}, gitsync.New[AppConfig])

	reg.Register("shellcmd", nil, shellcmd.New[AppConfig])

	return reg
}
