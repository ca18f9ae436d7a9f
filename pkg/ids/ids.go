// Package ids implements the stable symbol/type/field/function hashing
// scheme shared by the compiler, the bridge catalog, and the VM.
package ids

import "hash/fnv"

// SymbolID, TypeID, FieldID and FunctionID are all 32-bit FNV-1a hashes
// of a namespaced name. They are deliberately the same underlying type
// so a compiled constant can carry any of them as a plain i64.
type (
	SymbolID   uint32
	TypeID     uint32
	FieldID    uint32
	FunctionID uint32
)

// Namespace tags the five hashing domains. Two names that differ only
// in namespace never collide because the namespace tag is folded into
// the hashed bytes.
type Namespace string

const (
	NamespaceFunction Namespace = "fn"
	NamespaceType     Namespace = "type"
	NamespaceField    Namespace = "field"
	NamespaceBridge   Namespace = "bridge"
	NamespaceOperator Namespace = "op"
)

// Hash computes FNV-1a32("<namespace>::<name>") using the standard
// library's implementation so the offset basis (0x811c9dc5) and prime
// (0x01000193) the scheme relies on can never drift from the canonical
// values.
func Hash(ns Namespace, name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ns))
	h.Write([]byte("::"))
	h.Write([]byte(name))
	return h.Sum32()
}

func HashFunction(name string) FunctionID { return FunctionID(Hash(NamespaceFunction, name)) }
func HashType(name string) TypeID         { return TypeID(Hash(NamespaceType, name)) }
func HashBridge(name string) SymbolID     { return SymbolID(Hash(NamespaceBridge, name)) }
func HashOperator(op string) SymbolID     { return SymbolID(Hash(NamespaceOperator, op)) }

// HashField hashes a field name scoped to its owning struct: the field
// namespace key is "<StructName>.<fieldName>", so two different
// structs can reuse a field name without colliding.
func HashField(structName, fieldName string) FieldID {
	return FieldID(Hash(NamespaceField, structName+"."+fieldName))
}

// SymbolTable caches name-to-ID maps per namespace for the lifetime of
// a single compilation, avoiding repeated hashing of the same name.
type SymbolTable struct {
	fn     map[string]FunctionID
	typ    map[string]TypeID
	field  map[string]FieldID
	bridge map[string]SymbolID
	op     map[string]SymbolID
}

// NewSymbolTable returns an empty, ready-to-use table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		fn:     make(map[string]FunctionID),
		typ:    make(map[string]TypeID),
		field:  make(map[string]FieldID),
		bridge: make(map[string]SymbolID),
		op:     make(map[string]SymbolID),
	}
}

func (t *SymbolTable) Function(name string) FunctionID {
	if id, ok := t.fn[name]; ok {
		return id
	}
	id := HashFunction(name)
	t.fn[name] = id
	return id
}

func (t *SymbolTable) Type(name string) TypeID {
	if id, ok := t.typ[name]; ok {
		return id
	}
	id := HashType(name)
	t.typ[name] = id
	return id
}

func (t *SymbolTable) Field(structName, fieldName string) FieldID {
	key := structName + "." + fieldName
	if id, ok := t.field[key]; ok {
		return id
	}
	id := HashField(structName, fieldName)
	t.field[key] = id
	return id
}

func (t *SymbolTable) Bridge(name string) SymbolID {
	if id, ok := t.bridge[name]; ok {
		return id
	}
	id := HashBridge(name)
	t.bridge[name] = id
	return id
}

func (t *SymbolTable) Operator(op string) SymbolID {
	if id, ok := t.op[op]; ok {
		return id
	}
	id := HashOperator(op)
	t.op[op] = id
	return id
}
