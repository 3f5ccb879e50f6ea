package cache

import "time"

// Purger is implemented by caches that can drop expired entries.
type Purger interface {
	Purge() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	caches []Purger
	stop   chan struct{}
	done   chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep list. Not safe to call after
// StartSweep.
func (m *Manager) Register(c Purger) {
	m.caches = append(m.caches, c)
}

// StartSweep begins purging expired entries at the given interval.
func (m *Manager) StartSweep(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.Purge()
			}
		case <-m.stop:
			return
		}
	}
}

// Stop halts the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
