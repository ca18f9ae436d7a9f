package frontend

import (
	"github.com/chazu/vibeswift/pkg/bytecode"
	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/ids"
)

// UnknownLocalError reports a reference to a name that is neither a
// declared local/parameter nor resolvable as a free-function call.
type UnknownLocalError struct {
	Name string
	Span diag.Span
}

func (e UnknownLocalError) Error() string { return "unknown identifier: " + e.Name }

// Compiler lowers a parsed Program into an assembled bytecode.Program:
// register struct/function ids, compile a synthetic entry function,
// compile each user function, merge instruction blocks with offset
// jump targets, then assemble.
type Compiler struct {
	syms *ids.SymbolTable

	structs   []bytecode.StructLayout
	structIdx map[string]int

	functions []bytecode.FunctionMeta
	funcIdx   map[string]int

	constants *bytecode.ConstantPoolBuilder
	spans     map[int]diag.Span

	// per-function compile state, reset by compileFunctionBody
	locals     map[string]int
	localList  []string
	localTypes map[string]string
	builder    *bytecode.InstructionBuilder
}

func NewCompiler() *Compiler {
	return &Compiler{
		syms:      ids.NewSymbolTable(),
		structIdx: map[string]int{},
		funcIdx:   map[string]int{},
		constants: bytecode.NewConstantPoolBuilder(),
		spans:     map[int]diag.Span{},
	}
}

// CompileSource runs the full lex -> parse -> lower -> assemble
// pipeline over src and returns the finished program.
func CompileSource(src string) (*bytecode.Program, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	prog, err := NewParser(toks).ParseProgram()
	if err != nil {
		return nil, err
	}
	return NewCompiler().Compile(prog)
}

// Compile lowers prog into an assembled Program.
func (c *Compiler) Compile(prog *Program) (*bytecode.Program, error) {
	// Register struct layouts first: field ids are needed before any
	// function body referencing them is compiled.
	for _, sd := range prog.Structs {
		c.registerStruct(sd)
	}
	// Register every function id up front so forward calls resolve.
	for _, fd := range prog.Functions {
		c.registerFunction(fd)
	}

	type compiledBlock struct {
		meta         bytecode.FunctionMeta
		instructions []bytecode.Instruction
		spans        map[int]diag.Span
	}
	var blocks []compiledBlock

	entryIns, entrySpans, entryLocalCount, err := c.compileFunctionBody(nil, prog.Statements, true)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, compiledBlock{
		meta: bytecode.FunctionMeta{
			ID:         ids.HashFunction("$entry"),
			Name:       "$entry",
			Arity:      0,
			LocalCount: entryLocalCount,
			IsEntry:    true,
		},
		instructions: entryIns,
		spans:        entrySpans,
	})

	for _, fd := range prog.Functions {
		ins, spans, localCount, err := c.compileFunctionBody(fd.Params, fd.Body, false)
		if err != nil {
			return nil, err
		}
		idx := c.funcIdx[fd.Name]
		meta := c.functions[idx]
		meta.LocalCount = localCount
		blocks = append(blocks, compiledBlock{meta: meta, instructions: ins, spans: spans})
	}

	// Merge: offset each block's jump targets and span keys by the
	// block's start index in the final program-wide instruction list,
	// then record the block's entry offset.
	var merged []bytecode.Instruction
	finalSpans := map[int]diag.Span{}
	var finalFuncs []bytecode.FunctionMeta
	for _, b := range blocks {
		start := int64(len(merged))
		bytecode.Offset(b.instructions, start)
		for localAt, sp := range b.spans {
			finalSpans[localAt+int(start)] = sp
		}
		meta := b.meta
		meta.EntryInstructionIdx = int(start)
		if meta.Name == "$entry" {
			finalFuncs = append([]bytecode.FunctionMeta{meta}, finalFuncs...)
		} else {
			finalFuncs = append(finalFuncs, meta)
		}
		merged = append(merged, b.instructions...)
	}

	return bytecode.Assemble(merged, c.constants.Finish(), finalFuncs, c.structs, finalSpans), nil
}

func (c *Compiler) registerStruct(sd *StructDecl) {
	layout := bytecode.StructLayout{
		TypeID: c.syms.Type(sd.Name),
		Name:   sd.Name,
	}
	for _, f := range sd.Fields {
		layout.Fields = append(layout.Fields, bytecode.StructField{
			FieldID: c.syms.Field(sd.Name, f),
			Name:    f,
		})
	}
	c.structIdx[sd.Name] = len(c.structs)
	c.structs = append(c.structs, layout)
}

func (c *Compiler) registerFunction(fd *FuncDecl) {
	c.funcIdx[fd.Name] = len(c.functions)
	c.functions = append(c.functions, bytecode.FunctionMeta{
		ID:    c.syms.Function(fd.Name),
		Name:  fd.Name,
		Arity: len(fd.Params),
	})
}

func (c *Compiler) findStruct(name string) (bytecode.StructLayout, bool) {
	idx, ok := c.structIdx[name]
	if !ok {
		return bytecode.StructLayout{}, false
	}
	return c.structs[idx], true
}

// compileFunctionBody compiles one function's statements into its own
// instruction block, starting from params as the first locals. Every
// function body implicitly falls through to `push_const none;
// return_value` if control reaches its end without an explicit
// return.
func (c *Compiler) compileFunctionBody(params []string, body []Statement, isEntry bool) ([]bytecode.Instruction, map[int]diag.Span, int, error) {
	c.locals = map[string]int{}
	c.localList = nil
	c.localTypes = map[string]string{}
	c.builder = bytecode.NewInstructionBuilder()
	spans := map[int]diag.Span{}

	for _, p := range params {
		c.declareLocal(p)
	}

	for _, st := range body {
		if err := c.compileStatement(st, spans); err != nil {
			return nil, nil, 0, err
		}
	}

	at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantNone())))
	spans[at] = zeroSpan()
	at = c.builder.Emit(bytecode.OpReturnValue)
	spans[at] = zeroSpan()

	ins, err := c.builder.Finish()
	if err != nil {
		return nil, nil, 0, err
	}
	return ins, spans, len(c.localList), nil
}

func zeroSpan() diag.Span { return diag.Span{} }

func (c *Compiler) declareLocal(name string) int {
	if idx, ok := c.locals[name]; ok {
		return idx
	}
	idx := len(c.localList)
	c.locals[name] = idx
	c.localList = append(c.localList, name)
	return idx
}

func (c *Compiler) intern(ct bytecode.Constant) int { return c.constants.Intern(ct) }

func (c *Compiler) compileStatement(st Statement, spans map[int]diag.Span) error {
	switch s := st.(type) {
	case *LetStatement:
		return c.compileDecl(s.Name, s.Init, spans)
	case *VarStatement:
		return c.compileDecl(s.Name, s.Init, spans)
	case *AssignStatement:
		return c.compileAssign(s, spans)
	case *IfStatement:
		return c.compileIf(s, spans)
	case *WhileStatement:
		return c.compileWhile(s, spans)
	case *ReturnStatement:
		return c.compileReturn(s, spans)
	case *ExpressionStatement:
		if err := c.compileExpr(s.Expr, spans); err != nil {
			return err
		}
		at := c.builder.Emit(bytecode.OpPop)
		spans[at] = s.Span()
		return nil
	default:
		return UnknownStatementStartError{}
	}
}

func (c *Compiler) compileDecl(name string, init Expression, spans map[int]diag.Span) error {
	if err := c.compileExpr(init, spans); err != nil {
		return err
	}
	idx := c.declareLocal(name)
	c.localTypes[name] = c.typeHint(init)
	at := c.builder.Emit(bytecode.OpStoreLocal, int64(idx))
	spans[at] = init.Span()
	return nil
}

// typeHint makes a best-effort static guess at an expression's
// runtime type name, used only to pick the "Type.field" field id for
// member access and member assignment at compile time (method-call
// symbols come from fixed name tables instead). There is no full
// type checker here: hints come from literal kinds, known locals, and
// struct-constructor calls, and fall back to the bare identifier/call
// name when nothing better is known. The hint never affects runtime
// values or types.
func (c *Compiler) typeHint(e Expression) string {
	switch ex := e.(type) {
	case *StringLiteral:
		return "String"
	case *IntLiteral:
		return "Int"
	case *FloatLiteral:
		return "Double"
	case *BoolLiteral:
		return "Bool"
	case *Identifier:
		if t, ok := c.localTypes[ex.Name]; ok {
			return t
		}
		return ex.Name
	case *CallExpr:
		if ident, ok := ex.Callee.(*Identifier); ok {
			return ident.Name
		}
		return "$unknown"
	case *InfixExpr:
		return c.typeHint(ex.Left)
	default:
		return "$unknown"
	}
}

// compileAssign lowers the two supported assignment target shapes. A
// local target compiles the RHS, dups it, and store_locals one copy —
// leaving the other as the assignment's residual value, which is
// popped immediately since an AssignStatement is used only in
// statement position here. A direct member target (identifier.field
// only) loads the base, compiles the RHS, set_fields (copy-on-write
// produces a new struct value), and store_locals that new struct back
// into the base identifier's own slot — already stack-balanced, so no
// extra pop.
func (c *Compiler) compileAssign(s *AssignStatement, spans map[int]diag.Span) error {
	switch target := s.Target.(type) {
	case *Identifier:
		idx, ok := c.locals[target.Name]
		if !ok {
			return UnknownLocalError{Name: target.Name, Span: target.Span()}
		}
		if err := c.compileExpr(s.Value, spans); err != nil {
			return err
		}
		at := c.builder.Emit(bytecode.OpDup)
		spans[at] = s.Span()
		at = c.builder.Emit(bytecode.OpStoreLocal, int64(idx))
		spans[at] = s.Span()
		at = c.builder.Emit(bytecode.OpPop)
		spans[at] = s.Span()
		return nil
	case *MemberExpr:
		baseIdent, ok := target.Base.(*Identifier)
		if !ok {
			return UnknownStatementStartError{Pos: s.Span().Start}
		}
		baseIdx, ok := c.locals[baseIdent.Name]
		if !ok {
			return UnknownLocalError{Name: baseIdent.Name, Span: baseIdent.Span()}
		}
		at := c.builder.Emit(bytecode.OpLoadLocal, int64(baseIdx))
		spans[at] = s.Span()
		if err := c.compileExpr(s.Value, spans); err != nil {
			return err
		}
		fid := c.syms.Field(c.typeHint(target.Base), target.Name)
		at = c.builder.Emit(bytecode.OpSetField, int64(fid))
		spans[at] = s.Span()
		at = c.builder.Emit(bytecode.OpStoreLocal, int64(baseIdx))
		spans[at] = s.Span()
		return nil
	default:
		return UnknownStatementStartError{Pos: s.Span().Start}
	}
}

func (c *Compiler) compileIf(s *IfStatement, spans map[int]diag.Span) error {
	if err := c.compileExpr(s.Cond, spans); err != nil {
		return err
	}
	elseLabel := c.builder.CreateLabel()
	endLabel := c.builder.CreateLabel()
	at := c.builder.EmitJump(bytecode.OpJumpIfFalse, elseLabel)
	spans[at] = s.Cond.Span()

	for _, st := range s.Then {
		if err := c.compileStatement(st, spans); err != nil {
			return err
		}
	}
	at = c.builder.EmitJump(bytecode.OpJump, endLabel)
	spans[at] = s.Span()

	c.builder.Mark(elseLabel)
	for _, st := range s.Else {
		if err := c.compileStatement(st, spans); err != nil {
			return err
		}
	}
	c.builder.Mark(endLabel)
	return nil
}

func (c *Compiler) compileWhile(s *WhileStatement, spans map[int]diag.Span) error {
	startLabel := c.builder.CreateLabel()
	endLabel := c.builder.CreateLabel()
	c.builder.Mark(startLabel)

	if err := c.compileExpr(s.Cond, spans); err != nil {
		return err
	}
	at := c.builder.EmitJump(bytecode.OpJumpIfFalse, endLabel)
	spans[at] = s.Cond.Span()

	for _, st := range s.Body {
		if err := c.compileStatement(st, spans); err != nil {
			return err
		}
	}
	at = c.builder.EmitJump(bytecode.OpJump, startLabel)
	spans[at] = s.Span()

	c.builder.Mark(endLabel)
	return nil
}

func (c *Compiler) compileReturn(s *ReturnStatement, spans map[int]diag.Span) error {
	if s.Value == nil {
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantNone())))
		spans[at] = s.Span()
	} else if err := c.compileExpr(s.Value, spans); err != nil {
		return err
	}
	at := c.builder.Emit(bytecode.OpReturnValue)
	spans[at] = s.Span()
	return nil
}

func (c *Compiler) compileExpr(e Expression, spans map[int]diag.Span) error {
	switch ex := e.(type) {
	case *IntLiteral:
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantInt(ex.Value))))
		spans[at] = ex.Span()
	case *FloatLiteral:
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantFloat(ex.Value))))
		spans[at] = ex.Span()
	case *BoolLiteral:
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantBool(ex.Value))))
		spans[at] = ex.Span()
	case *StringLiteral:
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantString(ex.Value))))
		spans[at] = ex.Span()
	case *NilLiteral:
		at := c.builder.Emit(bytecode.OpPushConst, int64(c.intern(bytecode.ConstantNone())))
		spans[at] = ex.Span()
	case *Identifier:
		idx, ok := c.locals[ex.Name]
		if !ok {
			return UnknownLocalError{Name: ex.Name, Span: ex.Span()}
		}
		at := c.builder.Emit(bytecode.OpLoadLocal, int64(idx))
		spans[at] = ex.Span()
	case *InfixExpr:
		return c.compileInfix(ex, spans)
	case *MemberExpr:
		return c.compileMember(ex, spans)
	case *CallExpr:
		return c.compileCall(ex, spans)
	default:
		return UnknownStatementStartError{Pos: e.Span().Start}
	}
	return nil
}

// compileInfix lowers a binary operator to a call_bridge against the
// operator's op-namespace symbol: LHS then RHS pushed in evaluation
// order, no receiver, since operators are ordinary capability-gated
// bridge calls rather than a dedicated arithmetic opcode.
func (c *Compiler) compileInfix(ex *InfixExpr, spans map[int]diag.Span) error {
	if err := c.compileExpr(ex.Left, spans); err != nil {
		return err
	}
	if err := c.compileExpr(ex.Right, spans); err != nil {
		return err
	}
	sym := c.syms.Operator(ex.Op)
	at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), 2, 0)
	spans[at] = ex.Span()
	return nil
}

// compileMember lowers a bare `base.name` access (no call parens): a
// struct-typed base resolves to get_field; a bare identifier
// base that names neither a local nor a known struct is a recognized
// static member reference (e.g. Date.now used without parens) and
// becomes a nullary bridge call with no receiver; any other base
// compiles the base and issues a 0-ary receiver bridge call whose
// symbol encodes the member name.
func (c *Compiler) compileMember(ex *MemberExpr, spans map[int]diag.Span) error {
	if hint := c.typeHint(ex.Base); c.isKnownStruct(hint) {
		if err := c.compileExpr(ex.Base, spans); err != nil {
			return err
		}
		fid := c.syms.Field(hint, ex.Name)
		at := c.builder.Emit(bytecode.OpGetField, int64(fid))
		spans[at] = ex.Span()
		return nil
	}
	if ident, ok := ex.Base.(*Identifier); ok {
		if _, isLocal := c.locals[ident.Name]; !isLocal {
			sym := c.syms.Bridge(ident.Name + "." + ex.Name)
			at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), 0, 0)
			spans[at] = ex.Span()
			return nil
		}
	}
	if err := c.compileExpr(ex.Base, spans); err != nil {
		return err
	}
	sym := c.syms.Bridge("dynamic.member." + ex.Name)
	at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), 0, 1)
	spans[at] = ex.Span()
	return nil
}

func (c *Compiler) isKnownStruct(name string) bool {
	_, ok := c.structIdx[name]
	return ok
}

// fixedFreeBridgeNames is the fixed table that tier-3 free-function
// dispatch resolves against directly; any other name falls back to
// the generic bridge namespace dynamic.<name>.
var fixedFreeBridgeNames = map[string]bool{
	"print": true,
	"Text": true, "Button": true, "VStack": true, "HStack": true,
	"Spacer": true, "Image": true, "TextField": true, "Toggle": true,
}

// compileCall implements the three-tier free-function-call dispatch
// priority (user function > struct constructor > fixed bridge name
// table, falling back to dynamic.<name>) and routes a MemberExpr
// callee to the separate method-call lowering.
func (c *Compiler) compileCall(ex *CallExpr, spans map[int]diag.Span) error {
	if member, ok := ex.Callee.(*MemberExpr); ok {
		return c.compileMethodCall(member, ex, spans)
	}
	ident, ok := ex.Callee.(*Identifier)
	if !ok {
		return UnknownStatementStartError{Pos: ex.Span().Start}
	}

	if idx, ok := c.funcIdx[ident.Name]; ok {
		for _, a := range ex.Args {
			if err := c.compileExpr(a, spans); err != nil {
				return err
			}
		}
		fn := c.functions[idx]
		at := c.builder.Emit(bytecode.OpCallUser, int64(fn.ID), int64(len(ex.Args)))
		spans[at] = ex.Span()
		return nil
	}
	if layout, ok := c.findStruct(ident.Name); ok {
		return c.compileStructConstruction(layout, ex, spans)
	}
	if ident.Name == "Int" || ident.Name == "Double" || ident.Name == "Bool" {
		return c.compileInitCall(ident.Name, ex, spans)
	}
	for _, a := range ex.Args {
		if err := c.compileExpr(a, spans); err != nil {
			return err
		}
	}
	name := ident.Name
	if !fixedFreeBridgeNames[name] {
		name = "dynamic." + name
	}
	sym := c.syms.Bridge(name)
	at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), int64(len(ex.Args)), 0)
	spans[at] = ex.Span()
	return nil
}

// stateMethodNames and bareMethodNames name the UI bridge's
// receiver-taking methods that are not scoped by a "Type." prefix the
// way String/Date methods are (ui.go binds State.get/set/bind under
// the dotted name but modifiers/events under their bare name).
var stateMethodNames = map[string]bool{"get": true, "set": true, "bind": true}
var bareMethodNames = map[string]bool{
	"padding": true, "font": true, "foregroundStyle": true, "frame": true, "background": true,
	"onTap": true, "onAppear": true, "onChange": true,
}
var stringMethodNames = map[string]bool{"uppercased": true, "lowercased": true, "contains": true}

func (c *Compiler) compileMethodCall(member *MemberExpr, call *CallExpr, spans map[int]diag.Span) error {
	// A member base that is an identifier naming neither a local nor a
	// parameter is a static namespace reference (e.g. Date.now(),
	// State.init(...)), dispatched with no receiver on the stack
	// rather than loading it as a value.
	if ident, ok := member.Base.(*Identifier); ok {
		if _, isLocal := c.locals[ident.Name]; !isLocal {
			for _, a := range call.Args {
				if err := c.compileExpr(a, spans); err != nil {
					return err
				}
			}
			sym := c.syms.Bridge(ident.Name + "." + member.Name)
			at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), int64(len(call.Args)), 0)
			spans[at] = call.Span()
			return nil
		}
	}

	if err := c.compileExpr(member.Base, spans); err != nil {
		return err
	}
	for _, a := range call.Args {
		if err := c.compileExpr(a, spans); err != nil {
			return err
		}
	}
	var sym ids.SymbolID
	switch {
	case stateMethodNames[member.Name]:
		sym = c.syms.Bridge("State." + member.Name)
	case bareMethodNames[member.Name]:
		sym = c.syms.Bridge(member.Name)
	case stringMethodNames[member.Name]:
		sym = c.syms.Bridge("String." + member.Name)
	default:
		sym = c.syms.Bridge("dynamic.method." + member.Name)
	}
	at := c.builder.Emit(bytecode.OpCallBridge, int64(sym), int64(len(call.Args)), 1)
	spans[at] = call.Span()
	return nil
}

// compileInitCall lowers a bare `Int(x)`/`Double(x)`/`Bool(x)`
// coercion call to call_init against the "Type.init" bridge symbol,
// with no receiver on the value stack.
func (c *Compiler) compileInitCall(typeName string, ex *CallExpr, spans map[int]diag.Span) error {
	for _, a := range ex.Args {
		if err := c.compileExpr(a, spans); err != nil {
			return err
		}
	}
	sym := c.syms.Bridge(typeName + ".init")
	at := c.builder.Emit(bytecode.OpCallInit, int64(sym), int64(len(ex.Args)), 0)
	spans[at] = ex.Span()
	return nil
}

// compileStructConstruction pushes each positional argument, then
// make_struct with the struct's declared field order; fewer args than
// fields leaves the remaining fields unset.
func (c *Compiler) compileStructConstruction(layout bytecode.StructLayout, ex *CallExpr, spans map[int]diag.Span) error {
	n := len(ex.Args)
	if n > len(layout.Fields) {
		n = len(layout.Fields)
	}
	for i := 0; i < n; i++ {
		if err := c.compileExpr(ex.Args[i], spans); err != nil {
			return err
		}
	}
	operands := []int64{int64(layout.TypeID), int64(n)}
	for i := 0; i < n; i++ {
		operands = append(operands, int64(layout.Fields[i].FieldID))
	}
	at := c.builder.Emit(bytecode.OpMakeStruct, operands...)
	spans[at] = ex.Span()
	return nil
}
