package event

import "testing"

func TestParseRequest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		filename string
		size     uint64
		sender   string
		device   string
	}{
		{
			name:     "full payload",
			raw:      "[[REQ]]|report.pdf|2048|Alice|LaptopA",
			filename: "report.pdf",
			size:     2048,
			sender:   "Alice",
			device:   "LaptopA",
		},
		{
			name:     "two segments",
			raw:      "[[REQ]]|onlyname",
			filename: "onlyname",
			sender:   Placeholder,
			device:   Placeholder,
		},
		{
			name:     "no delimiter",
			raw:      "garbage",
			filename: Placeholder,
			sender:   Placeholder,
			device:   Placeholder,
		},
		{
			name:     "empty",
			raw:      "",
			filename: Placeholder,
			sender:   Placeholder,
			device:   Placeholder,
		},
		{
			name:     "empty filename segment",
			raw:      "[[REQ]]||123|Bob",
			filename: Placeholder,
			size:     123,
			sender:   "Bob",
			device:   Placeholder,
		},
		{
			name:     "bad size keeps zero",
			raw:      "[[REQ]]|a.txt|huge|Bob|Phone",
			filename: "a.txt",
			sender:   "Bob",
			device:   "Phone",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequest(tt.raw)
			if got.Filename != tt.filename {
				t.Fatalf("Filename = %q, want %q", got.Filename, tt.filename)
			}
			if got.Size != tt.size {
				t.Fatalf("Size = %d, want %d", got.Size, tt.size)
			}
			if got.Sender != tt.sender {
				t.Fatalf("Sender = %q, want %q", got.Sender, tt.sender)
			}
			if got.Device != tt.device {
				t.Fatalf("Device = %q, want %q", got.Device, tt.device)
			}
		})
	}
}

func TestParsePeer(t *testing.T) {
	t.Parallel()
	p := ParsePeer("peer-1", "Laptop|192.168.1.20|9400|HomeWifi|quic")
	if p.ID != "peer-1" || p.Name != "Laptop" || p.Addr != "192.168.1.20" {
		t.Fatalf("unexpected peer: %+v", p)
	}
	if p.Port != 9400 || p.SSID != "HomeWifi" || p.Transport != "quic" {
		t.Fatalf("unexpected peer: %+v", p)
	}

	short := ParsePeer("peer-2", "JustAName")
	if short.Name != "JustAName" || short.Port != 0 || short.Transport != "" {
		t.Fatalf("unexpected peer: %+v", short)
	}
}
