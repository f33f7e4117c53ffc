//go:build !aper_debug

package aper

// traceEnter and traceExit are no-ops in the default build; the
// aper_debug build tag swaps in the glog-backed versions in trace_on.go.
// Keeping the same signatures lets call sites stay build-tag-free.

func traceEnter(kind EventType, function, detail string) {}

func traceExit(kind EventType, function, detail string) {}
