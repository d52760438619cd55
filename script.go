package harness

// Action is an externally initiated interaction with the runtime: an
// Invoke or a Get.
type Action interface {
	isAction()
}

// Invoke calls an exported function by name, optionally qualified by a
// module id; an absent ModID resolves against the link state's Last.
type Invoke struct {
	ModID *string
	Name  string
	Args  []Const
}

func (Invoke) isAction() {}

// Get reads the current value of an exported global.
type Get struct {
	ModID *string
	Name  string
}

func (Get) isAction() {}

// Directive is one element of a script.
//
// Directive is sealed; see the note on V about exhaustiveness discipline.
type Directive interface {
	isDirective()
}

// TextModule is an inline text-format module definition. ID is set when
// the source gave the module a `$name`.
type TextModule struct {
	ID   *string
	Form ModuleForm
}

func (TextModule) isDirective() {}

// QuotedModule is a `module quote` form: raw text to be re-parsed as an
// inline module before compiling.
type QuotedModule struct {
	Source string
}

func (QuotedModule) isDirective() {}

// BinaryModule is a `module binary` form carrying raw bytes directly. ID
// is set when the source named the module.
type BinaryModule struct {
	ID    *string
	Bytes []byte
}

func (BinaryModule) isDirective() {}

// RegisterDirective aliases name to the module named by ModID (or Last
// when ModID is nil) for later resolution and for host-visible import
// binding.
type RegisterDirective struct {
	Name  string
	ModID *string
}

func (RegisterDirective) isDirective() {}

// ActionDirective is a bare action whose result is discarded.
type ActionDirective struct {
	Act Action
}

func (ActionDirective) isDirective() {}

// AssertReturnD expects Act to succeed and produce a stack matching
// Expected.
type AssertReturnD struct {
	Act      Action
	Expected []ExpR
}

func (AssertReturnD) isDirective() {}

// AssertTrapD expects Act to fail with an error whose canonical form has
// Expected as a prefix.
type AssertTrapD struct {
	Act      Action
	Expected string
}

func (AssertTrapD) isDirective() {}

// AssertExhaustionD is like AssertTrapD but is skipped entirely when the
// driver's no_exhaustion option is set.
type AssertExhaustionD struct {
	Act      Action
	Expected string
}

func (AssertExhaustionD) isDirective() {}

// AssertTrapModuleD expects compiling and instantiating Form to fail (a
// trap during start-function execution, typically).
type AssertTrapModuleD struct {
	ModuleID *string
	Form     ModuleForm
	Expected string
}

func (AssertTrapModuleD) isDirective() {}

// AssertMalformedD expects compile.text.until_link to fail on Form. The
// directive always fails after classification — the success branch is
// impossible by construction and the driver aborts unconditionally once
// the classifier has run.
type AssertMalformedD struct {
	Form     ModuleForm
	Expected string
}

func (AssertMalformedD) isDirective() {}

// AssertMalformedBinaryD expects parse.binary.module to fail on Bytes.
type AssertMalformedBinaryD struct {
	Bytes    []byte
	Expected string
}

func (AssertMalformedBinaryD) isDirective() {}

// AssertMalformedQuoteD expects Source to fail to parse as a module, or —
// if it parses to exactly one TextModule — to fail compile.text.until_binary.
type AssertMalformedQuoteD struct {
	Source   string
	Expected string
}

func (AssertMalformedQuoteD) isDirective() {}

// AssertInvalidD expects compile.text.until_link to fail validation on
// Form.
type AssertInvalidD struct {
	Form     ModuleForm
	Expected string
}

func (AssertInvalidD) isDirective() {}

// AssertInvalidBinaryD expects parsing, validation, or linking of Bytes
// to fail at whichever stage first rejects it.
type AssertInvalidBinaryD struct {
	Bytes    []byte
	Expected string
}

func (AssertInvalidBinaryD) isDirective() {}

// AssertInvalidQuoteD expects parse.text.module to fail on Source.
type AssertInvalidQuoteD struct {
	Source   string
	Expected string
}

func (AssertInvalidQuoteD) isDirective() {}

// AssertUnlinkableD expects compile.text.until_link to fail during
// linking (imports present but unsatisfiable) on Form.
type AssertUnlinkableD struct {
	Form     ModuleForm
	Expected string
}

func (AssertUnlinkableD) isDirective() {}

// Script is an ordered sequence of directives.
type Script []Directive
