// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logcfg wires every subsystem's package-level logger to a shared
// backend, mirroring the log.go found in dcrd/btcsuite command packages:
// each subsystem exposes a small UseLogger(slog.Logger) hook, and this
// package is the one place that knows about all of them and about the
// optional rotating file sink.
package logcfg

import (
	"io"
	"os"

	"github.com/NerfedChou/Quantum-Chain-sub004/addrmgr"
	"github.com/NerfedChou/Quantum-Chain-sub004/assembly"
	"github.com/NerfedChou/Quantum-Chain-sub004/cryptoprimitives"
	"github.com/NerfedChou/Quantum-Chain-sub004/discovery"
	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
	"github.com/NerfedChou/Quantum-Chain-sub004/eventbus"
	"github.com/NerfedChou/Quantum-Chain-sub004/mempool"
	"github.com/NerfedChou/Quantum-Chain-sub004/pipeline"
	"github.com/NerfedChou/Quantum-Chain-sub004/pow"
	"github.com/NerfedChou/Quantum-Chain-sub004/storage"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem is satisfied by every package's UseLogger hook.
type Subsystem interface {
	UseLogger(logger slog.Logger)
}

// subsystemTags maps each wired package's UseLogger hook to the tag its
// logger lines are prefixed with, mirroring dcrd's SUBSYSTEM_TAG = pkg
// convention (ADDR, DISC, ...).
var subsystemTags = map[string]func(slog.Logger){
	"ADXM": addrmgr.UseLogger,
	"ASMB": assembly.UseLogger,
	"CRPT": cryptoprimitives.UseLogger,
	"DISC": discovery.UseLogger,
	"ENVL": envelope.UseLogger,
	"EVTB": eventbus.UseLogger,
	"MMPL": mempool.UseLogger,
	"PIPE": pipeline.UseLogger,
	"POWV": pow.UseLogger,
	"STOR": storage.UseLogger,
}

// UseLoggers points every wired package's package-level logger at this
// backend, one subsystem tag at a time. Call once at process start,
// after any InitLogRotation call.
func UseLoggers() {
	for tag, use := range subsystemTags {
		use(Logger(tag))
	}
}

// Backend is the shared slog backend every subsystem logger is derived
// from via backend.Logger(subsystemTag).
var backend = slog.NewBackend(os.Stdout)

// logRotator is the file sink driving logging when InitLogRotation is
// called. nil means logging only goes to stdout.
var logRotator *rotator.Rotator

// Logger returns a new slog.Logger tagged with subsys, writing through
// the shared backend (and, once initialized, the rotating log file).
func Logger(subsys string) slog.Logger {
	l := backend.Logger(subsys)
	l.SetLevel(slog.LevelInfo)
	return l
}

// InitLogRotation redirects the shared backend's output to both stdout
// and a rotating log file at logFile, matching dcrd's initLogRotator.
func InitLogRotation(logFile string, maxRolls int) error {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return err
	}
	logRotator = r
	backend = slog.NewBackend(io.MultiWriter(os.Stdout, r))
	return nil
}

// SetLevel sets the log level for a previously created subsystem logger
// tag (a no-op placeholder for a full per-subsystem level registry, which
// belongs to the excluded CLI/service supervisor).
func SetLevel(logger slog.Logger, level slog.Level) {
	logger.SetLevel(level)
}
