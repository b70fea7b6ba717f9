// Package event models the transfer core's multiplexed callback payload as a
// typed value.
//
// The core signals everything through a single C-compatible callback carrying a
// discriminant plus positionally-fixed fields. Decode() validates the
// discriminant once, at the boundary, so downstream code never touches raw
// positional fields.
package event

import "fmt"

// Kind is the discriminant of a core callback payload.
type Kind int

const (
	KindLog              Kind = 0
	KindPeerFound        Kind = 1
	KindStarted          Kind = 2
	KindProgress         Kind = 3
	KindCompleted        Kind = 4
	KindError            Kind = 5
	KindIncomingRequest  Kind = 6
	KindRejected         Kind = 7
	KindPeerLost         Kind = 8
	KindDiscoveryStarted Kind = 9
	KindServerStarted    Kind = 10
)

func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindPeerFound:
		return "peer_found"
	case KindStarted:
		return "started"
	case KindProgress:
		return "progress"
	case KindCompleted:
		return "completed"
	case KindError:
		return "error"
	case KindIncomingRequest:
		return "incoming_request"
	case KindRejected:
		return "rejected"
	case KindPeerLost:
		return "peer_lost"
	case KindDiscoveryStarted:
		return "discovery_started"
	case KindServerStarted:
		return "server_started"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Known reports whether k is a kind this host understands. Unknown kinds are
// ignored by the dispatcher (newer cores may add kinds without breaking us).
func (k Kind) Known() bool {
	return k >= KindLog && k <= KindServerStarted
}

// Event is one decoded callback payload.
//
// The raw buffers handed to the callback are owned by the core and only valid
// for the duration of the call; Decode copies everything into Go strings, so
// an Event may be retained freely.
//
// Field meaning depends on Kind:
//
//	KindLog              Field1 = message
//	KindPeerFound        TaskID = peer id, Field1 = "name|ip|port|ssid|transport"
//	KindStarted          TaskID, Field1 = message
//	KindProgress         TaskID, N1 = bytes done, N2 = bytes total
//	KindCompleted        TaskID, Field1 = destination path
//	KindError            TaskID, Field1 = error message
//	KindIncomingRequest  TaskID, Field1 = "marker|filename|size|sender|device"
//	KindRejected         TaskID, Field1 = reason
//	KindPeerLost         TaskID = peer id
//	KindDiscoveryStarted (no fields)
//	KindServerStarted    Field1 = port
type Event struct {
	Kind   Kind
	TaskID string
	Field1 string
	Field2 string
	N1     uint64
	N2     uint64
}

// Decode builds an Event from the raw callback arguments. Null string fields
// arrive here as "" (the binding layer never passes raw pointers through).
func Decode(kind int, taskID, field1, field2 string, n1, n2 uint64) Event {
	return Event{
		Kind:   Kind(kind),
		TaskID: taskID,
		Field1: field1,
		Field2: field2,
		N1:     n1,
		N2:     n2,
	}
}

// Percent returns the progress percentage for a KindProgress event and whether
// it is computable. A zero total yields (0, false); callers must treat that as
// a no-op rather than an error.
func (e Event) Percent() (uint64, bool) {
	if e.N2 == 0 {
		return 0, false
	}
	return e.N1 * 100 / e.N2, true
}
