package config

import "strings"

// Mode selects the core's transport. The numeric values are part of the
// core's C-ABI contract and must not be reordered.
type Mode int

const (
	ModeTLS   Mode = 0 // default secure transport (TCP+TLS)
	ModeQUIC  Mode = 1
	ModePlain Mode = 2 // plain TCP, no TLS
)

func (m Mode) String() string {
	switch m {
	case ModeQUIC:
		return "QUIC (UDP)"
	case ModePlain:
		return "Plain TCP (No TLS)"
	default:
		return "TCP (TLS)"
	}
}

// ParseMode maps a CLI/config token to a transport mode, case-insensitively.
// Unknown tokens fall back to the default secure transport without error; a
// newer CLI talking to an older host should degrade, not fail.
func ParseMode(token string) Mode {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "quic":
		return ModeQUIC
	case "plain", "plaintcp":
		return ModePlain
	default:
		return ModeTLS
	}
}
