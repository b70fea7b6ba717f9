package event

import (
	"strconv"
	"strings"
)

// Placeholder substitutes for request payload segments the sender did not
// provide. Kept stable because it is user-visible in notification text.
const Placeholder = "Unknown"

// Request is the parsed form of an incoming-request payload:
//
//	<marker>|<filename>|<size>|<sender>|<device>
//
// The marker and trailing segments are reserved; only the filename currently
// reaches notification text. Missing segments default to Placeholder (size to
// zero) so a truncated payload still produces a usable prompt.
type Request struct {
	Filename string
	Size     uint64
	Sender   string
	Device   string
}

// ParseRequest tolerates any number of segments. A payload with no delimiter
// at all is treated as having an empty marker and no fields.
func ParseRequest(raw string) Request {
	req := Request{
		Filename: Placeholder,
		Sender:   Placeholder,
		Device:   Placeholder,
	}

	parts := strings.Split(raw, "|")
	// parts[0] is the marker; fields start at index 1.
	if len(parts) > 1 && parts[1] != "" {
		req.Filename = parts[1]
	}
	if len(parts) > 2 {
		if n, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 64); err == nil {
			req.Size = n
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		req.Sender = parts[3]
	}
	if len(parts) > 4 && parts[4] != "" {
		req.Device = parts[4]
	}
	return req
}

// Peer is the parsed form of a peer-found descriptor:
//
//	<name>|<ip>|<port>|<ssid>|<transport>
type Peer struct {
	ID        string
	Name      string
	Addr      string
	Port      int
	SSID      string
	Transport string
}

// ParsePeer decodes a peer descriptor; id comes from the event's task field.
// Missing segments are left empty, a malformed port is left zero.
func ParsePeer(id, raw string) Peer {
	p := Peer{ID: id}
	parts := strings.Split(raw, "|")
	if len(parts) > 0 {
		p.Name = parts[0]
	}
	if len(parts) > 1 {
		p.Addr = parts[1]
	}
	if len(parts) > 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil {
			p.Port = n
		}
	}
	if len(parts) > 3 {
		p.SSID = parts[3]
	}
	if len(parts) > 4 {
		p.Transport = parts[4]
	}
	return p
}
