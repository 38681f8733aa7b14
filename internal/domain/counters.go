package domain

// CounterSnapshot is a point-in-time read of cumulative OS I/O counters.
// Values are monotonically non-decreasing for the life of the host, barring
// resets, which are not compensated anywhere.
type CounterSnapshot struct {
	NetBytesRecv     uint64
	NetBytesSent     uint64
	DiskBytesRead    uint64
	DiskBytesWritten uint64
}
