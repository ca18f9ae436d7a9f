package bridge

import (
	"fmt"

	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// nodeTypes, modifierNames and eventNames list the UI intrinsics bound
// below. The node dicts built here carry no id; pkg/ir synthesizes a
// hash-based node id from the node's type/props/children once the
// tree is built.
var nodeTypes = []string{"Text", "Button", "VStack", "HStack", "Spacer", "Image", "TextField", "Toggle"}
var modifierNames = []string{"padding", "font", "foregroundStyle", "frame", "background"}
var eventNames = map[string]string{"onTap": "tap", "onAppear": "appear", "onChange": "change"}

// bindUIIntrinsics wires the optional UI tree DSL: view node
// constructors return a dict shaped like a ViewNode (type/props/
// children/modifiers/events) that pkg/ir.FromValue understands
// directly, and the State.* family thread through the current
// ScriptContext.
func bindUIIntrinsics(r *Registry, st *ids.SymbolTable) {
	for _, t := range nodeTypes {
		t := t
		r.Bind(st.Bridge(t), func(_ value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
			props := map[string]value.Value{}
			if len(args) > 0 {
				props["text"] = args[0]
			}
			return value.Dict(map[string]value.Value{
				"type":      value.String(t),
				"props":     value.Dict(props),
				"children":  value.Array(nil),
				"modifiers": value.Array(nil),
				"events":    value.Array(nil),
			}), nil
		})
	}

	for _, m := range modifierNames {
		m := m
		r.Bind(st.Bridge(m), func(receiver value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
			return applyModifier(receiver, m, args)
		})
	}

	for hook, ev := range eventNames {
		hook, ev := hook, ev
		r.Bind(st.Bridge(hook), func(receiver value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
			return applyEvent(receiver, ev, args)
		})
	}

	r.Bind(st.Bridge("State.init"), func(_ value.Value, args []value.Value, ctx ScriptContext, _ PrintSink) (value.Value, error) {
		path := fmt.Sprintf("state-%p", args)
		if len(args) > 0 {
			if ctx.StateSet != nil {
				ctx.StateSet(path, args[0])
			}
		}
		return value.Dict(map[string]value.Value{"$state": value.String(path)}), nil
	})
	r.Bind(st.Bridge("State.get"), func(receiver value.Value, _ []value.Value, ctx ScriptContext, _ PrintSink) (value.Value, error) {
		path := statePath(receiver)
		if ctx.StateGet == nil {
			return value.None(), nil
		}
		if v, ok := ctx.StateGet(path); ok {
			if vv, ok := v.(value.Value); ok {
				return vv, nil
			}
		}
		return value.None(), nil
	})
	r.Bind(st.Bridge("State.set"), func(receiver value.Value, args []value.Value, ctx ScriptContext, _ PrintSink) (value.Value, error) {
		path := statePath(receiver)
		if ctx.StateSet != nil && len(args) > 0 {
			ctx.StateSet(path, args[0])
		}
		return value.None(), nil
	})
	r.Bind(st.Bridge("State.bind"), func(receiver value.Value, _ []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
		path := statePath(receiver)
		return value.Dict(map[string]value.Value{"$binding": value.String(path)}), nil
	})
}

func statePath(receiver value.Value) string {
	if receiver.Kind == value.KindDict {
		if s, ok := receiver.DictVal["$state"]; ok {
			return s.StringVal
		}
	}
	return ""
}

func applyModifier(receiver value.Value, name string, args []value.Value) (value.Value, error) {
	node := receiver
	if node.Kind != value.KindDict {
		return value.Value{}, UnsupportedOperandError{Operator: name, Kind: receiver.Kind}
	}
	params := map[string]value.Value{}
	if len(args) > 0 {
		params["value"] = args[0]
	}
	mod := value.Dict(map[string]value.Value{"type": value.String(name), "params": value.Dict(params)})
	mods := append(append([]value.Value{}, node.DictVal["modifiers"].ArrayVal...), mod)
	return withField(node, "modifiers", value.Array(mods)), nil
}

func applyEvent(receiver value.Value, eventName string, args []value.Value) (value.Value, error) {
	node := receiver
	if node.Kind != value.KindDict {
		return value.Value{}, UnsupportedOperandError{Operator: eventName, Kind: receiver.Kind}
	}
	actionID := ""
	if len(args) > 0 {
		actionID = args[0].AsString()
	}
	ev := value.Dict(map[string]value.Value{"event": value.String(eventName), "action_id": value.String(actionID)})
	events := append(append([]value.Value{}, node.DictVal["events"].ArrayVal...), ev)
	return withField(node, "events", value.Array(events)), nil
}

func withField(node value.Value, field string, v value.Value) value.Value {
	out := make(map[string]value.Value, len(node.DictVal))
	for k, val := range node.DictVal {
		out[k] = val
	}
	out[field] = v
	return value.Dict(out)
}
