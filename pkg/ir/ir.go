// Package ir implements the bidirectional mapping between runtime
// values and the view-tree IR consumed by an external renderer.
// Nothing here renders anything; it is pure data shaping.
package ir

import (
	"fmt"
	"sort"

	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// IRValue is a closed sum, mirrored as a Go value: at most one of
// the typed fields is meaningful, selected by Kind, with the two
// reserved reference forms carried as dedicated fields instead of a
// generic map so callers can't mistake a reference for a plain dict.
type IRKind int

const (
	IRNull IRKind = iota
	IRBool
	IRInt
	IRDouble
	IRString
	IRArray
	IRObject
	IRStateRef
	IRBindingRef
)

type IRValue struct {
	Kind    IRKind
	Bool    bool
	Int     int64
	Double  float64
	Str     string
	Array   []IRValue
	Object  map[string]IRValue
	RefPath string
}

type Modifier struct {
	Type   string
	Params map[string]IRValue
}

type Event struct {
	Event    string
	ActionID string
	Path     string
}

type ViewNode struct {
	ID        string
	Type      string
	Props     map[string]IRValue
	Children  []ViewNode
	Modifiers []Modifier
	Events    []Event
}

type ViewTree struct {
	IRVersion    int
	Capabilities []string
	Root         ViewNode
}

// FromValue converts a runtime value into an IRValue. native and
// struct_instance values are not representable in IR and map to
// "absent", represented here as IRNull.
func FromValue(v value.Value) IRValue {
	switch v.Kind {
	case value.KindNone:
		return IRValue{Kind: IRNull}
	case value.KindBool:
		return IRValue{Kind: IRBool, Bool: v.BoolVal}
	case value.KindInt:
		return IRValue{Kind: IRInt, Int: v.IntVal}
	case value.KindFloat:
		return IRValue{Kind: IRDouble, Double: v.FloatVal}
	case value.KindString:
		return IRValue{Kind: IRString, Str: v.StringVal}
	case value.KindArray:
		out := make([]IRValue, len(v.ArrayVal))
		for i, e := range v.ArrayVal {
			out[i] = FromValue(e)
		}
		return IRValue{Kind: IRArray, Array: out}
	case value.KindDict:
		if path, ok := v.DictVal["$binding"]; ok {
			return IRValue{Kind: IRBindingRef, RefPath: path.StringVal}
		}
		if path, ok := v.DictVal["$state"]; ok {
			return IRValue{Kind: IRStateRef, RefPath: path.StringVal}
		}
		out := make(map[string]IRValue, len(v.DictVal))
		for k, e := range v.DictVal {
			out[k] = FromValue(e)
		}
		return IRValue{Kind: IRObject, Object: out}
	case value.KindNative, value.KindStructInstance:
		return IRValue{Kind: IRNull}
	default:
		return IRValue{Kind: IRNull}
	}
}

// ToValue is FromValue's inverse for the IR-representable subset,
// reconstructing the two reserved dict sentinels from their ref
// forms.
func ToValue(v IRValue) value.Value {
	switch v.Kind {
	case IRNull:
		return value.None()
	case IRBool:
		return value.Bool(v.Bool)
	case IRInt:
		return value.Int(v.Int)
	case IRDouble:
		return value.Float(v.Double)
	case IRString:
		return value.String(v.Str)
	case IRArray:
		out := make([]value.Value, len(v.Array))
		for i, e := range v.Array {
			out[i] = ToValue(e)
		}
		return value.Array(out)
	case IRObject:
		out := make(map[string]value.Value, len(v.Object))
		for k, e := range v.Object {
			out[k] = ToValue(e)
		}
		return value.Dict(out)
	case IRBindingRef:
		return value.Dict(map[string]value.Value{"$binding": value.String(v.RefPath)})
	case IRStateRef:
		return value.Dict(map[string]value.Value{"$state": value.String(v.RefPath)})
	default:
		return value.None()
	}
}

// NodeFromValue builds a ViewNode from a dict-shaped runtime value
// produced by the UI bridge intrinsics (pkg/bridge's ui.go), or from
// a bare `{type, ...}` payload.
func NodeFromValue(v value.Value) ViewNode {
	node := ViewNode{Props: map[string]IRValue{}}
	if v.Kind != value.KindDict {
		return node
	}
	if t, ok := v.DictVal["type"]; ok {
		node.Type = t.StringVal
	}
	if props, ok := v.DictVal["props"]; ok && props.Kind == value.KindDict {
		for k, pv := range props.DictVal {
			node.Props[k] = FromValue(pv)
		}
	}
	if children, ok := v.DictVal["children"]; ok && children.Kind == value.KindArray {
		for _, c := range children.ArrayVal {
			node.Children = append(node.Children, NodeFromValue(c))
		}
	}
	if mods, ok := v.DictVal["modifiers"]; ok && mods.Kind == value.KindArray {
		for _, mv := range mods.ArrayVal {
			if mv.Kind != value.KindDict {
				continue
			}
			mod := Modifier{Type: mv.DictVal["type"].StringVal, Params: map[string]IRValue{}}
			if params, ok := mv.DictVal["params"]; ok && params.Kind == value.KindDict {
				for k, pv := range params.DictVal {
					mod.Params[k] = FromValue(pv)
				}
			}
			node.Modifiers = append(node.Modifiers, mod)
		}
	}
	if events, ok := v.DictVal["events"]; ok && events.Kind == value.KindArray {
		for _, ev := range events.ArrayVal {
			if ev.Kind != value.KindDict {
				continue
			}
			node.Events = append(node.Events, Event{
				Event:    ev.DictVal["event"].StringVal,
				ActionID: ev.DictVal["action_id"].StringVal,
			})
		}
	}
	if id, ok := v.DictVal["id"]; ok && id.Kind == value.KindString {
		node.ID = id.StringVal
	} else {
		node.ID = synthesizeNodeID(node)
	}
	return node
}

// synthesizeNodeID builds a "node-<hash(type|propKeys|childIds)>" id
// for diffing stability, reusing the FNV-1a hashing already wired
// into pkg/ids instead of adding a second hashing dependency.
func synthesizeNodeID(node ViewNode) string {
	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	childIDs := make([]string, len(node.Children))
	for i, c := range node.Children {
		childIDs[i] = c.ID
	}
	material := fmt.Sprintf("%s|%v|%v", node.Type, keys, childIDs)
	return fmt.Sprintf("node-%08x", ids.Hash(ids.NamespaceType, "viewnode:"+material))
}

// BuildTree wraps a root node into a full ViewTree with the given
// capability set, defaulting ir_version to 1.
func BuildTree(root ViewNode, capabilities []string) ViewTree {
	return ViewTree{IRVersion: 1, Capabilities: capabilities, Root: root}
}
