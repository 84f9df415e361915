// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/twig/internal/adapters/cas"
	_ "go.trai.ch/twig/internal/adapters/fs"
	_ "go.trai.ch/twig/internal/adapters/gitexec"
	_ "go.trai.ch/twig/internal/adapters/gogit"
	_ "go.trai.ch/twig/internal/adapters/lockfile"
	_ "go.trai.ch/twig/internal/adapters/logger"
	_ "go.trai.ch/twig/internal/adapters/manifest"
	_ "go.trai.ch/twig/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/twig/internal/app"
)
