// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// SoftwareVersion is a controller software version as (major, minor, patch, build).
type SoftwareVersion [4]int

// ParseVersion parses a dotted version string. Missing components are zero,
// so "3.10" parses as 3.10.0.0.
func ParseVersion(s string) (SoftwareVersion, error) {
	var v SoftwareVersion
	s = strings.TrimSpace(s)
	if s == "" {
		return v, fmt.Errorf("empty version string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > len(v) {
		return v, fmt.Errorf("version %q has more than %d components", s, len(v))
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return SoftwareVersion{}, fmt.Errorf("invalid version component %q in %q", part, s)
		}
		v[i] = n
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) SoftwareVersion {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v to o lexicographically.
func (v SoftwareVersion) Compare(o SoftwareVersion) int {
	for i := range v {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether v sorts before o.
func (v SoftwareVersion) Less(o SoftwareVersion) bool {
	return v.Compare(o) < 0
}

func (v SoftwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// Variant is the controller hardware/software generation.
type Variant int

const (
	CB3 Variant = iota
	ESeries
)

func (v Variant) String() string {
	switch v {
	case ESeries:
		return "e-Series"
	case CB3:
		return "CB3"
	default:
		return "unknown"
	}
}

// VariantOf classifies a version: major 5 and later is e-Series.
func VariantOf(v SoftwareVersion) Variant {
	if v[0] >= 5 {
		return ESeries
	}
	return CB3
}

// Threshold is a per-variant minimum version, or Unsupported.
type Threshold struct {
	Version   SoftwareVersion
	supported bool
}

// Unsupported marks a command as unavailable on a variant.
var Unsupported = Threshold{}

// Since returns a threshold requiring at least the given version.
func Since(version string) Threshold {
	return Threshold{Version: MustParseVersion(version), supported: true}
}

// Supported reports whether the threshold is a real minimum version.
func (t Threshold) Supported() bool {
	return t.supported
}

func (t Threshold) String() string {
	if !t.supported {
		return "unsupported"
	}
	return t.Version.String()
}

// VersionGate is the connected controller's version and variant. The zero
// value is an unknown gate that rejects every command.
type VersionGate struct {
	Raw     string
	Version SoftwareVersion
	Variant Variant
	known   bool
}

// RecordVersion parses a version string (either bare "5.9.4" or a full
// "URSoftware 5.9.4.1234 (Sep 01 2021)" reply) into a gate.
func RecordVersion(raw string) (VersionGate, error) {
	s := raw
	if strings.Contains(s, " ") {
		s = ExtractVersion(s)
	}
	v, err := ParseVersion(s)
	if err != nil {
		return VersionGate{}, fmt.Errorf("failed to record version: %w", err)
	}
	return VersionGate{Raw: raw, Version: v, Variant: VariantOf(v), known: true}, nil
}

// Known reports whether a version has been recorded.
func (g VersionGate) Known() bool {
	return g.known
}

// Threshold picks the minimum version that applies to the gate's variant.
func (g VersionGate) Threshold(spec CommandSpec) Threshold {
	if g.Variant == ESeries {
		return spec.MinESeries
	}
	return spec.MinCB3
}

// Supports reports whether the command is legal on the connected controller.
// An unknown gate fails closed.
func (g VersionGate) Supports(spec CommandSpec) bool {
	if !g.known {
		return false
	}
	t := g.Threshold(spec)
	if !t.supported {
		return false
	}
	return g.Version.Compare(t.Version) >= 0
}

func (g VersionGate) String() string {
	if !g.known {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", g.Version, g.Variant)
}

// ExtractVersion pulls the version number out of a PolyscopeVersion reply:
// the text between the first space and the following " (".
func ExtractVersion(reply string) string {
	sp := strings.Index(reply, " ")
	if sp < 0 {
		return reply
	}
	rest := reply[sp+1:]
	if end := strings.Index(rest, " ("); end >= 0 {
		return rest[:end]
	}
	return rest
}
