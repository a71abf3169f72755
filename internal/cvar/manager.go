package cvar

import (
	"fmt"
	"strings"

	"cvarshell/internal/registry"
	"cvarshell/internal/strutil"
)

// Manager owns every registered CVar and provides the override window that
// lets `set`/`reset` write through ReadOnly/InitOnly during config reload
// and startup-argv processing.
type Manager struct {
	table *registry.Table[*CVar]
	sink  ErrorSink

	allowWriteReadOnly bool
	allowWriteInitOnly bool
}

// ManagerOptions configures a new Manager.
type ManagerOptions struct {
	Buckets         int
	CaseInsensitive bool
	Sink            ErrorSink
}

// NewManager creates an empty CVar manager.
func NewManager(opts ManagerOptions) *Manager {
	hash := strutil.HashJenkinsOAT
	equal := strutil.Equal
	if opts.CaseInsensitive {
		hash = strutil.HashJenkinsOATFold
		equal = strutil.EqualFold
	}
	sink := opts.Sink
	if sink == nil {
		sink = discardSink{}
	}
	return &Manager{
		table: registry.New[*CVar](opts.Buckets, hash, equal),
		sink:  sink,
	}
}

// AllowWriteReadOnly implements the overrideWindow interface consulted by
// CVar.Set*.
func (m *Manager) AllowWriteReadOnly() bool { return m.allowWriteReadOnly }

// AllowWriteInitOnly implements the overrideWindow interface consulted by
// CVar.Set*.
func (m *Manager) AllowWriteInitOnly() bool { return m.allowWriteInitOnly }

// OpenOverride sets the manager's override window. Enabling the ReadOnly
// override implicitly enables the InitOnly override too:
// a caller that can write through ReadOnly must, a fortiori, be able to
// write through the strictly weaker InitOnly.
func (m *Manager) OpenOverride(allowReadOnly, allowInitOnly bool) {
	if allowReadOnly {
		allowInitOnly = true
	}
	m.allowWriteReadOnly = allowReadOnly
	m.allowWriteInitOnly = allowInitOnly
}

// CloseOverride closes both override flags.
func (m *Manager) CloseOverride() {
	m.allowWriteReadOnly = false
	m.allowWriteInitOnly = false
}

// Register adds cv to the manager. It fails if the name is already taken.
func (m *Manager) Register(cv *CVar) error {
	if !m.table.Link(cv.Name(), cv) {
		m.sink.Error("cvar %s: already registered", cv.Name())
		return fmt.Errorf("cvar %s: already registered", cv.Name())
	}
	return nil
}

// RegisterNew builds a CVar from spec (wiring in this manager's sink if the
// spec didn't set one) and registers it in one step.
func (m *Manager) RegisterNew(spec Spec) (*CVar, error) {
	if spec.Sink == nil {
		spec.Sink = m.sink
	}
	cv, err := New(spec)
	if err != nil {
		m.sink.Error("%v", err)
		return nil, err
	}
	if err := m.Register(cv); err != nil {
		return nil, err
	}
	return cv, nil
}

// Find looks up a CVar by exact name.
func (m *Manager) Find(name string) (*CVar, bool) {
	return m.table.Find(name)
}

// Remove unlinks a CVar by name. External pointers already held by callers
// become invalid on removal by contract, not a runtime error.
func (m *Manager) Remove(name string) bool {
	return m.table.Unlink(name)
}

// RemoveAll unlinks every CVar.
func (m *Manager) RemoveAll() {
	m.table.RemoveAll()
}

// Count returns the number of registered CVars.
func (m *Manager) Count() int { return m.table.Len() }

// Enumerate returns every registered CVar, most-recently-registered first.
func (m *Manager) Enumerate() []*CVar {
	all := make([]*CVar, 0, m.table.Len())
	m.table.Each(func(_ string, cv *CVar) bool {
		all = append(all, cv)
		return true
	})
	return all
}

// EnumerateSorted returns every registered CVar sorted alphabetically by
// name, matching the "sorted alphabetically" contract on partial-name and
// flag queries.
func (m *Manager) EnumerateSorted() []*CVar {
	return SortedNames(m.Enumerate())
}

// FindByPrefix returns, sorted alphabetically, every CVar whose name
// contains substr (case-sensitive), backing tab completion and
// `listCVars PATTERN`.
func (m *Manager) FindByPrefix(substr string) []*CVar {
	var matches []*CVar
	m.table.Each(func(name string, cv *CVar) bool {
		if strings.Contains(name, substr) {
			matches = append(matches, cv)
		}
		return true
	})
	return SortedNames(matches)
}

// FindByPrefixFold is the case-insensitive counterpart to FindByPrefix,
// used when a search pattern is suffixed with "/i".
func (m *Manager) FindByPrefixFold(substr string) []*CVar {
	lower := strings.ToLower(substr)
	var matches []*CVar
	m.table.Each(func(name string, cv *CVar) bool {
		if strings.Contains(strings.ToLower(name), lower) {
			matches = append(matches, cv)
		}
		return true
	})
	return SortedNames(matches)
}

// FindByFlag returns, sorted alphabetically, every CVar with flag set.
func (m *Manager) FindByFlag(flag Flag) []*CVar {
	var matches []*CVar
	m.table.Each(func(_ string, cv *CVar) bool {
		if cv.Flags().Has(flag) {
			matches = append(matches, cv)
		}
		return true
	})
	return SortedNames(matches)
}

// ClearAllModified clears the Modified bit on every registered CVar,
// called after a successful config save.
func (m *Manager) ClearAllModified() {
	m.table.Each(func(_ string, cv *CVar) bool {
		cv.ClearModified()
		return true
	})
}
