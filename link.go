package harness

// ModuleForm is a parsed-but-not-yet-linked module, opaque to the core —
// meaningful only to the capability.Parser/Compiler that produced it.
type ModuleForm any

// BinaryModuleData is a parsed binary module, opaque to the core.
type BinaryModuleData any

// CompiledModule is the result of compile.*.until_link, opaque to the
// core: a module ready for the interpreter to instantiate and run.
type CompiledModule any

// EnvHandle is a runtime environment (tables, memories, globals shared by
// one or more module instances), opaque to the core.
type EnvHandle any

// EnvID indexes a LinkState's envs table.
type EnvID uint64

// GlobalHandle exposes the live value of an exported global. Value
// returns an error for a valType this harness cannot represent as a V
// rather than silently coercing it to the wrong variant.
type GlobalHandle interface {
	Value() (V, error)
}

// Exports is the export surface of one instantiated module.
type Exports struct {
	Functions map[string]FuncHandle
	Globals   map[string]GlobalHandle
}

// ModuleEntry pairs a module's exports with the environment it was
// instantiated into.
type ModuleEntry struct {
	Exports Exports
	EnvID   EnvID
}

// LinkState is the named registry of instantiated modules plus the
// collection of runtime environments they live in.
//
// LinkState is not safe for concurrent use; the driver that owns it is
// single-threaded.
type LinkState struct {
	// ByID maps both a module's own declared id and any names installed
	// by Register to the same *ModuleEntry. Register does not create a
	// new environment; it installs an alias in this name map.
	ByID map[string]*ModuleEntry
	Envs map[EnvID]EnvHandle

	// Last points to the most recently instantiated module, if any; it
	// is defined iff a module directive has succeeded.
	Last *ModuleEntry

	nextEnv EnvID
}

// NewLinkState returns an empty link state with no modules and no
// environments.
func NewLinkState() *LinkState {
	return &LinkState{
		ByID: make(map[string]*ModuleEntry),
		Envs: make(map[EnvID]EnvHandle),
	}
}

// NewEnv allocates a fresh environment id for env and returns it. Called
// once per successfully compiled module, before that module is installed.
func (ls *LinkState) NewEnv(env EnvHandle) EnvID {
	id := ls.nextEnv
	ls.nextEnv++
	ls.Envs[id] = env
	return id
}

// Install registers a freshly instantiated module's exports under id
// (either its own declared id or a harness-minted one for anonymous
// modules) and makes it Last.
func (ls *LinkState) Install(id string, exports Exports, envID EnvID) {
	entry := &ModuleEntry{Exports: exports, EnvID: envID}
	ls.ByID[id] = entry
	ls.Last = entry
}

// Lookup resolves modID to a module entry, or Last when modID is nil.
// Shared by the resolver and the driver's Register handling.
func (ls *LinkState) Lookup(modID *string) (*ModuleEntry, bool) {
	if modID == nil {
		if ls.Last == nil {
			return nil, false
		}
		return ls.Last, true
	}
	entry, ok := ls.ByID[*modID]
	return entry, ok
}
