package wazeroharness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/errkind"
)

// node is one parsed s-expression: either an atom (bare symbol or
// quoted string) or a list of child nodes. start/end are byte offsets
// into the original source, kept so a module form can be handed to the
// WAT compiler as the exact text it was written in rather than a
// reserialized approximation.
type node struct {
	atom     string
	isString bool
	list     []node
	start    int
	end      int
}

// ParseTextScript tokenizes source into top-level s-expressions and
// classifies each into a Directive. Supported forms cover the script
// grammar used throughout the conformance corpus: module definitions
// (plain, binary, and quoted), register, bare actions, and the eleven
// assert_* directive shapes.
func (a *Adapter) ParseTextScript(source string) (harness.Script, error) {
	var script harness.Script
	pos := 0
	for {
		pos = skipSpace(source, pos)
		if pos >= len(source) {
			return script, nil
		}
		n, next, err := readSexpr(source, pos)
		if err != nil {
			return nil, errkind.ParseFail{Text: err.Error()}
		}
		pos = next
		d, err := directiveOf(source, n)
		if err != nil {
			return nil, err
		}
		script = append(script, d)
	}
}

func isDelim(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')'
}

func skipSpace(src string, pos int) int {
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case c == ';' && pos+1 < len(src) && src[pos+1] == ';':
			for pos < len(src) && src[pos] != '\n' {
				pos++
			}
		case c == '(' && pos+1 < len(src) && src[pos+1] == ';':
			depth := 1
			pos += 2
			for pos < len(src) && depth > 0 {
				if pos+1 < len(src) && src[pos] == '(' && src[pos+1] == ';' {
					depth++
					pos += 2
				} else if pos+1 < len(src) && src[pos] == ';' && src[pos+1] == ')' {
					depth--
					pos += 2
				} else {
					pos++
				}
			}
		default:
			return pos
		}
	}
	return pos
}

func readSexpr(src string, pos int) (node, int, error) {
	pos = skipSpace(src, pos)
	if pos >= len(src) {
		return node{}, pos, fmt.Errorf("unexpected end of input")
	}
	switch src[pos] {
	case '(':
		start := pos
		pos++
		var items []node
		for {
			pos = skipSpace(src, pos)
			if pos >= len(src) {
				return node{}, pos, fmt.Errorf("unterminated list")
			}
			if src[pos] == ')' {
				pos++
				break
			}
			child, next, err := readSexpr(src, pos)
			if err != nil {
				return node{}, pos, err
			}
			items = append(items, child)
			pos = next
		}
		return node{list: items, start: start, end: pos}, pos, nil
	case '"':
		return readString(src, pos)
	default:
		start := pos
		for pos < len(src) && !isDelim(src[pos]) {
			pos++
		}
		if pos == start {
			return node{}, pos, fmt.Errorf("unexpected character %q", src[pos])
		}
		return node{atom: src[start:pos], start: start, end: pos}, pos, nil
	}
}

func readString(src string, pos int) (node, int, error) {
	start := pos
	pos++
	var sb strings.Builder
	for pos < len(src) && src[pos] != '"' {
		if src[pos] == '\\' && pos+1 < len(src) {
			pos++
			switch src[pos] {
			case 'n':
				sb.WriteByte('\n')
				pos++
			case 't':
				sb.WriteByte('\t')
				pos++
			case 'r':
				sb.WriteByte('\r')
				pos++
			case '"':
				sb.WriteByte('"')
				pos++
			case '\'':
				sb.WriteByte('\'')
				pos++
			case '\\':
				sb.WriteByte('\\')
				pos++
			default:
				if pos+1 < len(src) && isHexDigit(src[pos]) && isHexDigit(src[pos+1]) {
					sb.WriteByte(byte(hexVal(src[pos])<<4 | hexVal(src[pos+1])))
					pos += 2
				} else {
					sb.WriteByte(src[pos])
					pos++
				}
			}
			continue
		}
		sb.WriteByte(src[pos])
		pos++
	}
	if pos >= len(src) {
		return node{}, pos, fmt.Errorf("unterminated string")
	}
	pos++
	return node{atom: sb.String(), isString: true, start: start, end: pos}, pos, nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

func directiveOf(src string, n node) (harness.Directive, error) {
	if len(n.list) == 0 {
		return nil, errkind.ParseFail{Text: "expected a directive form"}
	}
	head := n.list[0]
	switch head.atom {
	case "module":
		mv, err := classifyModule(src, n)
		if err != nil {
			return nil, err
		}
		return mv.asDirective(), nil
	case "register":
		name := n.list[1].atom
		var modID *string
		if len(n.list) > 2 {
			s := n.list[2].atom
			modID = &s
		}
		return harness.RegisterDirective{Name: name, ModID: modID}, nil
	case "invoke", "get":
		act, err := actionOf(n)
		if err != nil {
			return nil, err
		}
		return harness.ActionDirective{Act: act}, nil
	case "assert_return":
		act, err := actionOf(n.list[1])
		if err != nil {
			return nil, err
		}
		var expected []harness.ExpR
		for _, r := range n.list[2:] {
			e, err := expOf(r)
			if err != nil {
				return nil, err
			}
			expected = append(expected, e)
		}
		return harness.AssertReturnD{Act: act, Expected: expected}, nil
	case "assert_trap":
		inner := n.list[1]
		msg := n.list[2].atom
		if len(inner.list) > 0 && inner.list[0].atom == "module" {
			mv, err := classifyModule(src, inner)
			if err != nil {
				return nil, err
			}
			return harness.AssertTrapModuleD{ModuleID: mv.id, Form: mv.form, Expected: msg}, nil
		}
		act, err := actionOf(inner)
		if err != nil {
			return nil, err
		}
		return harness.AssertTrapD{Act: act, Expected: msg}, nil
	case "assert_exhaustion":
		act, err := actionOf(n.list[1])
		if err != nil {
			return nil, err
		}
		return harness.AssertExhaustionD{Act: act, Expected: n.list[2].atom}, nil
	case "assert_malformed":
		mv, err := classifyModule(src, n.list[1])
		if err != nil {
			return nil, err
		}
		msg := n.list[2].atom
		switch mv.kind {
		case "binary":
			return harness.AssertMalformedBinaryD{Bytes: mv.bytes, Expected: msg}, nil
		case "quote":
			return harness.AssertMalformedQuoteD{Source: mv.quoteSrc, Expected: msg}, nil
		default:
			return harness.AssertMalformedD{Form: mv.form, Expected: msg}, nil
		}
	case "assert_invalid":
		mv, err := classifyModule(src, n.list[1])
		if err != nil {
			return nil, err
		}
		msg := n.list[2].atom
		switch mv.kind {
		case "binary":
			return harness.AssertInvalidBinaryD{Bytes: mv.bytes, Expected: msg}, nil
		case "quote":
			return harness.AssertInvalidQuoteD{Source: mv.quoteSrc, Expected: msg}, nil
		default:
			return harness.AssertInvalidD{Form: mv.form, Expected: msg}, nil
		}
	case "assert_unlinkable":
		mv, err := classifyModule(src, n.list[1])
		if err != nil {
			return nil, err
		}
		return harness.AssertUnlinkableD{Form: mv.form, Expected: n.list[2].atom}, nil
	default:
		return nil, errkind.ParseFail{Text: fmt.Sprintf("unsupported top-level form %q", head.atom)}
	}
}

// moduleVariant is the classified shape of a `(module ...)` form,
// whichever of the three surface syntaxes it used.
type moduleVariant struct {
	kind     string // "text", "binary", or "quote"
	id       *string
	form     harness.ModuleForm
	bytes    []byte
	quoteSrc string
}

func (mv moduleVariant) asDirective() harness.Directive {
	switch mv.kind {
	case "binary":
		return harness.BinaryModule{ID: mv.id, Bytes: mv.bytes}
	case "quote":
		return harness.QuotedModule{Source: mv.quoteSrc}
	default:
		return harness.TextModule{ID: mv.id, Form: mv.form}
	}
}

func classifyModule(src string, inner node) (moduleVariant, error) {
	if len(inner.list) == 0 || inner.list[0].atom != "module" {
		return moduleVariant{}, errkind.ParseFail{Text: "expected a (module ...) form"}
	}
	idx := 1
	var id *string
	if idx < len(inner.list) && !inner.list[idx].isString && strings.HasPrefix(inner.list[idx].atom, "$") {
		s := inner.list[idx].atom
		id = &s
		idx++
	}
	if idx < len(inner.list) && !inner.list[idx].isString && inner.list[idx].atom == "binary" {
		var buf []byte
		for _, it := range inner.list[idx+1:] {
			buf = append(buf, []byte(it.atom)...)
		}
		return moduleVariant{kind: "binary", id: id, bytes: buf}, nil
	}
	if idx < len(inner.list) && !inner.list[idx].isString && inner.list[idx].atom == "quote" {
		var sb strings.Builder
		for _, it := range inner.list[idx+1:] {
			sb.WriteString(it.atom)
			sb.WriteByte('\n')
		}
		return moduleVariant{kind: "quote", id: id, quoteSrc: sb.String()}, nil
	}
	text := src[inner.start:inner.end]
	return moduleVariant{kind: "text", id: id, form: &moduleForm{source: text}}, nil
}

func actionOf(n node) (harness.Action, error) {
	if len(n.list) == 0 {
		return nil, errkind.ParseFail{Text: "expected an action form"}
	}
	head := n.list[0].atom
	idx := 1
	var modID *string
	if idx < len(n.list) && !n.list[idx].isString && strings.HasPrefix(n.list[idx].atom, "$") {
		s := n.list[idx].atom
		modID = &s
		idx++
	}
	if idx >= len(n.list) {
		return nil, errkind.ParseFail{Text: "action missing export name"}
	}
	name := n.list[idx].atom
	idx++
	switch head {
	case "invoke":
		var args []harness.Const
		for _, a := range n.list[idx:] {
			c, err := constOf(a)
			if err != nil {
				return nil, err
			}
			args = append(args, c)
		}
		return harness.Invoke{ModID: modID, Name: name, Args: args}, nil
	case "get":
		return harness.Get{ModID: modID, Name: name}, nil
	default:
		return nil, errkind.ParseFail{Text: "unsupported action " + head}
	}
}

func expOf(n node) (harness.ExpR, error) {
	if len(n.list) < 2 {
		return nil, errkind.ParseFail{Text: "malformed expected result"}
	}
	op := n.list[0].atom
	val := n.list[1].atom
	switch {
	case op == "f32.const" && val == "nan:canonical":
		return harness.ExpNanCanon{Width: harness.NanWidth32}, nil
	case op == "f32.const" && val == "nan:arithmetic":
		return harness.ExpNanArith{Width: harness.NanWidth32}, nil
	case op == "f64.const" && val == "nan:canonical":
		return harness.ExpNanCanon{Width: harness.NanWidth64}, nil
	case op == "f64.const" && val == "nan:arithmetic":
		return harness.ExpNanArith{Width: harness.NanWidth64}, nil
	}
	lit, err := constOf(n)
	if err != nil {
		return nil, err
	}
	return harness.ExpLiteral{Lit: lit}, nil
}

func constOf(n node) (harness.Const, error) {
	if len(n.list) < 1 {
		return nil, errkind.ParseFail{Text: "malformed constant"}
	}
	op := n.list[0].atom
	arg := ""
	if len(n.list) > 1 {
		arg = n.list[1].atom
	}
	switch op {
	case "i32.const":
		v, err := parseIntLiteral(arg, 32)
		if err != nil {
			return nil, err
		}
		return harness.LitI32(int32(uint32(v))), nil
	case "i64.const":
		v, err := parseIntLiteral(arg, 64)
		if err != nil {
			return nil, err
		}
		return harness.LitI64(int64(v)), nil
	case "f32.const":
		bits, err := parseFloat32Literal(arg)
		if err != nil {
			return nil, err
		}
		return harness.LitF32{Bits: bits}, nil
	case "f64.const":
		bits, err := parseFloat64Literal(arg)
		if err != nil {
			return nil, err
		}
		return harness.LitF64{Bits: bits}, nil
	case "ref.null":
		switch arg {
		case "func":
			return harness.LitNull{Heap: harness.HeapFunc}, nil
		case "extern":
			return harness.LitNull{Heap: harness.HeapExtern}, nil
		default:
			return harness.LitUnsupported{Detail: "ref.null " + arg}, nil
		}
	case "ref.extern":
		v, err := parseIntLiteral(arg, 32)
		if err != nil {
			return nil, err
		}
		return harness.LitExtern{Payload: int32(v)}, nil
	default:
		return harness.LitUnsupported{Detail: op}, nil
	}
}

func parseIntLiteral(s string, bitSize int) (uint64, error) {
	s = strings.ReplaceAll(s, "_", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, bitSize)
	if err != nil {
		return 0, errkind.ConstantOutOfRange{}
	}
	if neg {
		mask := uint64(1)<<uint(bitSize) - 1
		v = (-v) & mask
	}
	return v, nil
}

func parseFloat32Literal(s string) (uint32, error) {
	s = strings.ReplaceAll(s, "_", "")
	if bits, ok := parseNanLiteral(s, 8, 23); ok {
		return uint32(bits), nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errkind.ConstantOutOfRange{}
	}
	return math.Float32bits(float32(f)), nil
}

func parseFloat64Literal(s string) (uint64, error) {
	s = strings.ReplaceAll(s, "_", "")
	if bits, ok := parseNanLiteral(s, 11, 52); ok {
		return bits, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errkind.ConstantOutOfRange{}
	}
	return math.Float64bits(f), nil
}

// parseNanLiteral handles `nan:0x...` explicit-payload literals, which
// strconv.ParseFloat does not understand. expBits/mantissaBits are the
// target format's exponent and mantissa field widths.
func parseNanLiteral(s string, expBits, mantissaBits uint) (uint64, bool) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-nan:0x"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+nan:0x"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "nan:0x") {
		return 0, false
	}
	payload, err := strconv.ParseUint(s[len("nan:0x"):], 16, int(mantissaBits))
	if err != nil {
		return 0, false
	}
	exp := uint64(1)<<expBits - 1
	bits := exp<<mantissaBits | payload
	if neg {
		bits |= uint64(1) << (expBits + mantissaBits)
	}
	return bits, true
}
