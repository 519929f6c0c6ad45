package jsast

import "encoding/json"

// wireNode is the JSON-serializable envelope used to round-trip a Node
// tree through the persisted cache. Every variant carries its own
// fields; only the ones matching Type are populated.
type wireNode struct {
	Type string `json:"type"`

	StartLine int `json:"start"`
	EndLine   int `json:"end"`

	// Program, BlockStatement
	Statements []wireNode `json:"statements,omitempty"`

	// FunctionStatement
	Name string    `json:"name,omitempty"`
	Body *wireNode `json:"body,omitempty"`

	// CallExpression
	Base           *wireNode `json:"base,omitempty"`
	FirstStringArg *string   `json:"firstStringArg,omitempty"`

	// MemberExpression
	Property string `json:"property,omitempty"`

	// VariableExpression
	Lhs *wireNode `json:"lhs,omitempty"`
	Rhs *wireNode `json:"rhs,omitempty"`

	// ObjectPattern
	Properties []Property `json:"properties,omitempty"`

	// ExportStatement
	Exports *wireNode `json:"exports,omitempty"`
}

func toWire(n Node) *wireNode {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *Program:
		return &wireNode{Type: "Program", StartLine: v.Start(), EndLine: v.End(), Statements: toWireList(v.Statements)}
	case *BlockStatement:
		return &wireNode{Type: "BlockStatement", StartLine: v.Start(), EndLine: v.End(), Statements: toWireList(v.Statements)}
	case *FunctionStatement:
		return &wireNode{Type: "FunctionStatement", StartLine: v.Start(), EndLine: v.End(), Name: v.Name, Body: toWire(v.Body)}
	case *CallExpression:
		return &wireNode{Type: "CallExpression", StartLine: v.Start(), EndLine: v.End(), Base: toWire(v.Base), FirstStringArg: v.FirstStringArg}
	case *Identifier:
		return &wireNode{Type: "Identifier", StartLine: v.Start(), EndLine: v.End(), Name: v.Name}
	case *MemberExpression:
		return &wireNode{Type: "MemberExpression", StartLine: v.Start(), EndLine: v.End(), Base: toWire(v.Base), Property: v.Property}
	case *VariableExpression:
		return &wireNode{Type: "VariableExpression", StartLine: v.Start(), EndLine: v.End(), Lhs: toWire(v.Lhs), Rhs: toWire(v.Rhs)}
	case *ObjectPattern:
		return &wireNode{Type: "ObjectPattern", StartLine: v.Start(), EndLine: v.End(), Properties: v.Properties}
	case *ExportStatement:
		return &wireNode{Type: "ExportStatement", StartLine: v.Start(), EndLine: v.End(), Exports: toWire(v.Exports)}
	default:
		return nil
	}
}

func toWireList(nodes []Node) []wireNode {
	if nodes == nil {
		return nil
	}
	out := make([]wireNode, 0, len(nodes))
	for _, n := range nodes {
		if w := toWire(n); w != nil {
			out = append(out, *w)
		}
	}
	return out
}

func fromWire(w *wireNode) Node {
	if w == nil {
		return nil
	}

	switch w.Type {
	case "Program":
		return NewProgram(w.StartLine, w.EndLine, fromWireList(w.Statements))
	case "BlockStatement":
		return NewBlockStatement(w.StartLine, w.EndLine, fromWireList(w.Statements))
	case "FunctionStatement":
		body, _ := fromWire(w.Body).(*BlockStatement)
		return NewFunctionStatement(w.StartLine, w.EndLine, w.Name, body)
	case "CallExpression":
		return NewCallExpression(w.StartLine, w.EndLine, fromWire(w.Base), w.FirstStringArg)
	case "Identifier":
		return NewIdentifier(w.StartLine, w.EndLine, w.Name)
	case "MemberExpression":
		return NewMemberExpression(w.StartLine, w.EndLine, fromWire(w.Base), w.Property)
	case "VariableExpression":
		return NewVariableExpression(w.StartLine, w.EndLine, fromWire(w.Lhs), fromWire(w.Rhs))
	case "ObjectPattern":
		return NewObjectPattern(w.StartLine, w.EndLine, w.Properties)
	case "ExportStatement":
		exports, _ := fromWire(w.Exports).(*ObjectPattern)
		return NewExportStatement(w.StartLine, w.EndLine, exports)
	default:
		return nil
	}
}

func fromWireList(wires []wireNode) []Node {
	if wires == nil {
		return nil
	}
	out := make([]Node, 0, len(wires))
	for i := range wires {
		if n := fromWire(&wires[i]); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Marshal serializes a Program to JSON for persisted-cache storage.
func Marshal(p *Program) ([]byte, error) {
	return json.Marshal(toWire(p))
}

// Unmarshal deserializes a Program previously written by Marshal.
func Unmarshal(data []byte) (*Program, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	prog, _ := fromWire(&w).(*Program)
	return prog, nil
}
