// Package resolve looks up functions and globals through the link-state
// registry.
package resolve

import (
	"github.com/wastrun/harness"
	"github.com/wastrun/harness/errkind"
)

// Func resolves a function export, returning the handle and the id of the
// environment its owning module was instantiated into.
func Func(ls *harness.LinkState, modID *string, name string) (harness.FuncHandle, harness.EnvID, error) {
	entry, err := lookup(ls, modID)
	if err != nil {
		return nil, 0, err
	}
	fh, ok := entry.Exports.Functions[name]
	if !ok {
		return nil, 0, errkind.UnboundName{Name: name}
	}
	return fh, entry.EnvID, nil
}

// Global resolves a global export.
func Global(ls *harness.LinkState, modID *string, name string) (harness.GlobalHandle, error) {
	entry, err := lookup(ls, modID)
	if err != nil {
		return nil, err
	}
	gh, ok := entry.Exports.Globals[name]
	if !ok {
		return nil, errkind.UnboundName{Name: name}
	}
	return gh, nil
}

func lookup(ls *harness.LinkState, modID *string) (*harness.ModuleEntry, error) {
	entry, ok := ls.Lookup(modID)
	if ok {
		return entry, nil
	}
	if modID == nil {
		return nil, errkind.UnboundLastModule{}
	}
	return nil, errkind.UnboundModule{ID: *modID}
}
