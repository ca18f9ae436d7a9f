package bridge

import "github.com/chazu/vibeswift/pkg/capability"

// operatorNames covers the full supported operator set.
var operatorNames = []string{"+", "-", "*", "/", "==", "<", ">", "<=", ">=", "&&", "||"}

// uiIntrinsicNames covers the optional UI tree DSL.
var uiIntrinsicNames = []string{
	"Text", "Button", "VStack", "HStack", "Spacer", "Image", "TextField", "Toggle",
	"padding", "font", "foregroundStyle", "frame", "background",
	"onTap", "onAppear", "onChange",
	"State.init", "State.get", "State.set", "State.bind",
}

// DefaultCatalog builds the static catalog: print, the
// String/Int/Double/Bool coercions, Date.now, every operator symbol,
// and the optional UI intrinsics.
func DefaultCatalog() *capability.Catalog {
	c := capability.NewCatalog()

	c.Register("print", capability.FoundationBasic)
	c.Register("String.uppercased", capability.FoundationBasic)
	c.Register("String.lowercased", capability.FoundationBasic)
	c.Register("String.contains", capability.FoundationBasic)
	c.Register("Int.init", capability.FoundationBasic)
	c.Register("Double.init", capability.FoundationBasic)
	c.Register("Bool.init", capability.FoundationBasic)
	c.Register("Date.now", capability.DateFormatting)

	for _, op := range operatorNames {
		c.RegisterOperator(op, capability.FoundationBasic)
	}
	for _, name := range uiIntrinsicNames {
		c.Register(name, capability.UIBasic)
	}

	return c
}
