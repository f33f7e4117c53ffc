package aper

// EventType identifies the category of a trace event emitted by the
// codec when built with the aper_debug tag. Values are a bitmask so a
// tracer can be configured to watch a subset of events.
type EventType int

const EventNone EventType = 0

const (
	EventEnter EventType = 1 << iota
	EventExit
	EventInt
	EventLength
	EventFragment
	EventAlign
	EventBitString
	EventOctetString
	EventChoice
	EventSequence
)

const EventAll EventType = -1
