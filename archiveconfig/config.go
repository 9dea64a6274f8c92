// Package archiveconfig holds the operator-tunable knobs for the archive
// job subsystem: prefetch pool size, the ZIP64 decision's hard limits,
// and an extended-SOP-class flag for DICOMDIR entries. Built-in defaults
// are overridable by an optional YAML file.
//
// EnableExtendedSOPClass is loaded and defaulted here, but no other
// package reads it: DICOMDIR records are written without the SOP Class
// UID whatever its value.
package archiveconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	giB = 1 << 30
)

// Config is the full set of tunables. Zero value is never valid on its
// own; use Default or Load.
type Config struct {
	PrefetchWorkers        int    `yaml:"prefetch_workers"`
	Zip64SizeThreshold     uint64 `yaml:"zip64_size_threshold"`
	Zip64InstanceThreshold uint32 `yaml:"zip64_instance_threshold"`
	EnableExtendedSOPClass bool   `yaml:"enable_extended_sop_class"`
}

// Default returns the built-in configuration: 3 prefetch workers, the
// ZIP64 format's own hard limits (2GiB, 65535 entries) as thresholds —
// zipstream.Stream.RequiresZip64 applies its own safety margin below
// these — and extended SOP class disabled.
func Default() Config {
	return Config{
		PrefetchWorkers:        3,
		Zip64SizeThreshold:     2 * giB,
		Zip64InstanceThreshold: 65535,
		EnableExtendedSOPClass: false,
	}
}

// Load returns Default with any field present in the YAML file at path
// overridden. A missing file is not an error: Load returns Default
// unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("archiveconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("archiveconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
