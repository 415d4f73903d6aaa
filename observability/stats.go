// Package observability aggregates gateway and delivery counters for the
// /statsz endpoint and the dev client.
package observability

import (
	"context"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"

	"tripchat/contract"
	"tripchat/domain/event"
)

// Stats counters are written from many goroutines (connections, fanout),
// so everything is atomic.
type Stats struct {
	CurrentConnections  atomic.Int64
	ConnectionsAccepted atomic.Uint64
	ConnectionsRefused  atomic.Uint64
	ConnectionsEvicted  atomic.Uint64
	EventsRateLimited   atomic.Uint64
	MessagesBroadcast   atomic.Uint64
	RoomEventsBroadcast atomic.Uint64
	DeliveryFailures    atomic.Uint64
}

func NewStats() *Stats {
	return &Stats{}
}

// Snapshot is the JSON shape served on /statsz.
type Snapshot struct {
	CurrentConnections  int64  `json:"current_connections"`
	ConnectionsAccepted uint64 `json:"connections_accepted"`
	ConnectionsRefused  uint64 `json:"connections_refused"`
	ConnectionsEvicted  uint64 `json:"connections_evicted"`
	EventsRateLimited   uint64 `json:"events_rate_limited"`
	MessagesBroadcast   uint64 `json:"messages_broadcast"`
	RoomEventsBroadcast uint64 `json:"room_events_broadcast"`
	DeliveryFailures    uint64 `json:"delivery_failures"`

	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

// Collect merges the counters with process-level stats (RSS, CPU) and Go
// runtime memory figures. Process stats are best effort.
func (s *Stats) Collect() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snapshot := Snapshot{
		CurrentConnections:  s.CurrentConnections.Load(),
		ConnectionsAccepted: s.ConnectionsAccepted.Load(),
		ConnectionsRefused:  s.ConnectionsRefused.Load(),
		ConnectionsEvicted:  s.ConnectionsEvicted.Load(),
		EventsRateLimited:   s.EventsRateLimited.Load(),
		MessagesBroadcast:   s.MessagesBroadcast.Load(),
		RoomEventsBroadcast: s.RoomEventsBroadcast.Load(),
		DeliveryFailures:    s.DeliveryFailures.Load(),
		AllocMemMb:          mem.Alloc / 1024 / 1024,
		NumGC:               mem.NumGC,
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := p.MemoryInfo(); err == nil {
			snapshot.RSSBytes = memInfo.RSS
		}
		if cpu, err := p.CPUPercent(); err == nil {
			snapshot.CPUPercent = cpu
		}
	}
	return snapshot
}

var _ contract.EventSink = (*StatsSink)(nil)

// StatsSink is a permanent fanout sink counting broadcast traffic.
type StatsSink struct {
	stats *Stats
}

func NewStatsSink(stats *Stats) *StatsSink {
	return &StatsSink{stats: stats}
}

func (s *StatsSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MessageNew:
		s.stats.MessagesBroadcast.Add(1)
	default:
		s.stats.RoomEventsBroadcast.Add(1)
	}
	return nil
}
