//go:build aper_debug

package aper

import (
	"github.com/golang/glog"
)

// EnvDebugVar holds the name APER_DEBUG. Nothing in this package reads
// that environment variable; trace output is gated by glog's verbosity
// level (V(2)).
const EnvDebugVar = "APER_DEBUG"

// EnableMask restricts which EventType values are actually traced; the
// default traces everything.
var EnableMask EventType = EventAll

func traceEvent(phase, kind EventType, function, detail string) {
	if EnableMask&(phase|kind) == 0 {
		return
	}
	glog.V(2).Infof("%s %s %s %s", phase, kind, function, detail)
}

// traceEnter logs entry into a primitive classified under kind (e.g.
// EventInt for the integer family, EventBitString for bit strings).
func traceEnter(kind EventType, function, detail string) {
	traceEvent(EventEnter, kind, function, detail)
}

// traceExit logs return from a primitive classified under kind.
func traceExit(kind EventType, function, detail string) {
	traceEvent(EventExit, kind, function, detail)
}

func (e EventType) String() string {
	switch e {
	case EventEnter:
		return "ENTER"
	case EventExit:
		return "EXIT"
	case EventInt:
		return "INT"
	case EventLength:
		return "LENGTH"
	case EventFragment:
		return "FRAGMENT"
	case EventAlign:
		return "ALIGN"
	case EventBitString:
		return "BITSTRING"
	case EventOctetString:
		return "OCTETSTRING"
	case EventChoice:
		return "CHOICE"
	case EventSequence:
		return "SEQUENCE"
	default:
		return "EVENT"
	}
}
