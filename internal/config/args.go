package config

import "strconv"

// ApplyArgs overlays positional CLI arguments ([port] [mode]) onto the
// transfer section. A non-numeric or out-of-range port keeps the configured
// value; the caller decides whether to warn. Extra arguments are ignored.
func (c *Config) ApplyArgs(args []string) (portOK bool) {
	portOK = true
	if len(args) > 0 {
		if p, err := strconv.Atoi(args[0]); err == nil && p > 0 && p <= 65535 {
			c.Transfer.Port = p
		} else {
			portOK = false
		}
	}
	if len(args) > 1 {
		c.Transfer.Mode = args[1]
	}
	return portOK
}
