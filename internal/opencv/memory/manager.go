package memory

import (
	"sync"
	"time"

	"mri-enhancer/internal/logger"
)

// Manager records every tracked safe.Mat allocation so leaks show up in the
// shutdown report.
type Manager struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
	logger      logger.Logger
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakActiveMats int64
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		allocations: make(map[uint64]*AllocationRecord),
		logger:      log,
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
	if m.stats.ActiveMats > m.stats.PeakActiveMats {
		m.stats.PeakActiveMats = m.stats.ActiveMats
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.allocations[id]
	if !exists {
		m.logger.Warning("MemoryManager", "release of untracked Mat", map[string]interface{}{
			"id":  id,
			"tag": tag,
		})
		return
	}

	delete(m.allocations, id)
	m.stats.TotalReleased += record.Size
	m.stats.ActiveMats--
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stats
}

// ActiveByTag counts live Mats per producing stage.
func (m *Manager) ActiveByTag() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, record := range m.allocations {
		counts[record.Tag]++
	}
	return counts
}

// Report logs the allocation totals, warning when Mats are still alive.
func (m *Manager) Report() {
	stats := m.GetStats()
	fields := map[string]interface{}{
		"allocated_bytes": stats.TotalAllocated,
		"released_bytes":  stats.TotalReleased,
		"active_mats":     stats.ActiveMats,
		"peak_mats":       stats.PeakActiveMats,
	}

	if stats.ActiveMats > 0 {
		fields["active_by_tag"] = m.ActiveByTag()
		m.logger.Warning("MemoryManager", "Mats still allocated", fields)
		return
	}

	m.logger.Info("MemoryManager", "all Mats released", fields)
}

// Shutdown satisfies shutdown.Shutdownable.
func (m *Manager) Shutdown() {
	m.Report()
}
