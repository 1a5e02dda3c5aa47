package driver

import (
	"sort"
	"sync"
)

// FilterFn is being used to decide if a driver should be included in the
// query result.
type FilterFn func(Driver) bool

// FilterDeviceType returns a filter function to get drivers of the given type.
func FilterDeviceType(t DeviceType) FilterFn {
	return func(d Driver) bool {
		return d.Info().DeviceType == t
	}
}

// FilterPosition returns a filter function to get cameras facing p.
func FilterPosition(p Position) FilterFn {
	return func(d Driver) bool {
		return d.Info().Position == p
	}
}

// FilterID returns a filter function to get the driver with the given ID.
func FilterID(id string) FilterFn {
	return func(d Driver) bool {
		return d.ID() == id
	}
}

// FilterAnd returns a filter function to take logical conjunction of given filters.
func FilterAnd(filters ...FilterFn) FilterFn {
	return func(d Driver) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// FilterNot returns a filter function to take logical inverse of given filter.
func FilterNot(filter FilterFn) FilterFn {
	return func(d Driver) bool {
		return !filter(d)
	}
}

// Manager is a registry of drivers and their states
type Manager struct {
	mu      sync.Mutex
	drivers map[string]Driver
	order   map[string]int
	next    int
}

var manager = NewManager()

// GetManager gets manager singleton instance. Drivers register themselves
// here when their package is imported.
func GetManager() *Manager {
	return manager
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{
		drivers: make(map[string]Driver),
		order:   make(map[string]int),
	}
}

// Register wraps a with a state tracking driver and adds it to the registry.
func (m *Manager) Register(a Adapter, info Info) Driver {
	d := wrapAdapter(a, info)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID()] = d
	m.order[d.ID()] = m.next
	m.next++
	return d
}

// Query returns the drivers accepted by f in registration order.
func (m *Manager) Query(f FilterFn) []Driver {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]Driver, 0)
	for _, d := range m.drivers {
		if f(d) {
			results = append(results, d)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return m.order[results[i].ID()] < m.order[results[j].ID()]
	})

	return results
}
