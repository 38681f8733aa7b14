package domain

import "time"

// Channel identifies one throughput measurement carried by every Sample.
type Channel int

const (
	ChannelEncrypt Channel = iota
	ChannelDecrypt
	ChannelInbound
	ChannelOutbound
	ChannelDiskIO
	ChannelDiskEncrypt
)

// Channels lists every channel in export column order.
var Channels = []Channel{
	ChannelEncrypt,
	ChannelDecrypt,
	ChannelInbound,
	ChannelOutbound,
	ChannelDiskIO,
	ChannelDiskEncrypt,
}

var channelKeys = [...]string{"encrypt", "decrypt", "net_in", "net_out", "disk_io", "disk_encrypt"}

var channelLabels = [...]string{
	"Encryption Speed",
	"Decryption Speed",
	"Incoming Traffic",
	"Outgoing Traffic",
	"Disk I/O",
	"Disk Enc Speed",
}

// Key is the short machine name used for metric labels and SQL columns.
func (c Channel) Key() string {
	if c < 0 || int(c) >= len(channelKeys) {
		return "unknown"
	}
	return channelKeys[c]
}

// Label is the human-facing name used in charts and summaries.
func (c Channel) Label() string {
	if c < 0 || int(c) >= len(channelLabels) {
		return "Unknown"
	}
	return channelLabels[c]
}

func (c Channel) String() string { return c.Key() }

// Sample is one completed sampling cycle. All rates are bytes per second.
type Sample struct {
	Seq             uint64    `json:"seq"`
	Timestamp       time.Time `json:"ts"`
	IntervalSeconds float64   `json:"interval_seconds"`

	EncryptRate     float64 `json:"encrypt_rate"`
	DecryptRate     float64 `json:"decrypt_rate"`
	InboundNetRate  float64 `json:"inbound_net_rate"`
	OutboundNetRate float64 `json:"outbound_net_rate"`
	DiskIORate      float64 `json:"disk_io_rate"`
	DiskEncryptRate float64 `json:"disk_encrypt_rate"`
}

// Value returns the measurement for ch.
func (s Sample) Value(ch Channel) float64 {
	switch ch {
	case ChannelEncrypt:
		return s.EncryptRate
	case ChannelDecrypt:
		return s.DecryptRate
	case ChannelInbound:
		return s.InboundNetRate
	case ChannelOutbound:
		return s.OutboundNetRate
	case ChannelDiskIO:
		return s.DiskIORate
	case ChannelDiskEncrypt:
		return s.DiskEncryptRate
	default:
		return 0
	}
}
