//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import "gopkg.in/yaml.v3"

// The raw* types mirror the document format. Every node records where it appeared in the
// document so that nodes without an explicit position can be located in the document itself.

type srcPos struct {
	line, col int
}

// decodeAt decodes value into v (a pointer to a method-less alias of the raw type) and records
// the position of value.
func decodeAt[T any](value *yaml.Node, v *T, at *srcPos) error {
	if err := value.Decode(v); err != nil {
		return err
	}
	*at = srcPos{line: value.Line, col: value.Column}
	return nil
}

type rawUnit struct {
	File            string          `yaml:"file"`
	Globals         []*rawVar       `yaml:"globals"`
	Containers      []*rawContainer `yaml:"containers"`
	Implementations []*rawImpl      `yaml:"implementations"`
}

type rawContainer struct {
	// Kind is one of "interface" (the default), "protocol" or "category".
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name"`
	Class      string         `yaml:"class"`
	Super      string         `yaml:"super"`
	Protocols  []string       `yaml:"protocols"`
	Fields     []*rawVar      `yaml:"ivars"`
	Properties []*rawProperty `yaml:"properties"`
	Methods    []*rawMethod   `yaml:"methods"`
	Line       int            `yaml:"line"`
	Col        int            `yaml:"col"`

	at srcPos
}

func (c *rawContainer) UnmarshalYAML(value *yaml.Node) error {
	type plain rawContainer
	return decodeAt(value, (*plain)(c), &c.at)
}

type rawVar struct {
	Name string   `yaml:"name"`
	Type *rawType `yaml:"type"`
	Init *rawNode `yaml:"init"`
	Line int      `yaml:"line"`
	Col  int      `yaml:"col"`

	at srcPos
}

func (v *rawVar) UnmarshalYAML(value *yaml.Node) error {
	type plain rawVar
	return decodeAt(value, (*plain)(v), &v.at)
}

type rawProperty struct {
	Name string   `yaml:"name"`
	Type *rawType `yaml:"type"`
	// Ivar names the backing instance variable; it defaults to the name prefixed with an
	// underscore when the class declares such an instance variable.
	Ivar string `yaml:"ivar"`
	Line int    `yaml:"line"`
	Col  int    `yaml:"col"`

	at srcPos
}

func (p *rawProperty) UnmarshalYAML(value *yaml.Node) error {
	type plain rawProperty
	return decodeAt(value, (*plain)(p), &p.at)
}

type rawMethod struct {
	Selector string `yaml:"selector"`
	// Class marks class methods; methods are instance methods by default.
	Class      bool       `yaml:"class"`
	Params     []*rawVar  `yaml:"params"`
	Result     *rawType   `yaml:"result"`
	Designated bool       `yaml:"designated"`
	Body       []*rawNode `yaml:"body"`
	Line       int        `yaml:"line"`
	Col        int        `yaml:"col"`

	at srcPos
}

func (m *rawMethod) UnmarshalYAML(value *yaml.Node) error {
	type plain rawMethod
	return decodeAt(value, (*plain)(m), &m.at)
}

type rawImpl struct {
	Class   string       `yaml:"class"`
	Methods []*rawMethod `yaml:"methods"`
	Line    int          `yaml:"line"`
	Col     int          `yaml:"col"`

	at srcPos
}

func (i *rawImpl) UnmarshalYAML(value *yaml.Node) error {
	type plain rawImpl
	return decodeAt(value, (*plain)(i), &i.at)
}

// rawType is either a spelling ("NSString * _Nonnull") or a mapping spelling out the parts of
// the type, which is needed for block types.
type rawType struct {
	Kind        string     `yaml:"kind"`
	Name        string     `yaml:"name"`
	Nullability string     `yaml:"nullability"`
	Interface   string     `yaml:"interface"`
	Protocols   []string   `yaml:"protocols"`
	Result      *rawType   `yaml:"result"`
	Params      []*rawType `yaml:"params"`

	spelling string
	at       srcPos
}

func (t *rawType) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.spelling = value.Value
		t.at = srcPos{line: value.Line, col: value.Column}
		return nil
	}
	type plain rawType
	return decodeAt(value, (*plain)(t), &t.at)
}

// rawNode is a statement or an expression, discriminated by Kind. A plain scalar is shorthand
// for a reference to the named variable (or instance variable), and "nil" for the null literal.
type rawNode struct {
	Kind string   `yaml:"kind"`
	Type *rawType `yaml:"type"`
	Line int      `yaml:"line"`
	Col  int      `yaml:"col"`

	// Statements.
	Stmts      []*rawNode `yaml:"stmts"`
	Vars       []*rawVar  `yaml:"vars"`
	Cond       *rawNode   `yaml:"cond"`
	Then       *rawStmts  `yaml:"then"`
	Else       *rawStmts  `yaml:"else"`
	Body       *rawStmts  `yaml:"body"`
	Init       *rawNode   `yaml:"init"`
	Post       *rawNode   `yaml:"post"`
	Elem       *rawNode   `yaml:"elem"`
	Collection *rawNode   `yaml:"collection"`

	// Expressions.
	Name     string      `yaml:"name"`
	Base     *rawNode    `yaml:"base"`
	Value    string      `yaml:"value"`
	Receiver *rawNode    `yaml:"receiver"`
	Super    bool        `yaml:"super"`
	Class    string      `yaml:"class"`
	Selector string      `yaml:"selector"`
	Args     []*rawNode  `yaml:"args"`
	Fun      *rawNode    `yaml:"fun"`
	LHS      *rawNode    `yaml:"lhs"`
	RHS      *rawNode    `yaml:"rhs"`
	Op       string      `yaml:"op"`
	X        *rawNode    `yaml:"x"`
	Y        *rawNode    `yaml:"y"`
	Elems    []*rawNode  `yaml:"elems"`
	Entries  []*rawEntry `yaml:"entries"`
	Params   []*rawVar   `yaml:"params"`
	Result   *rawType    `yaml:"result"`

	at srcPos
}

func (n *rawNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = rawNode{Kind: "var", Name: value.Value, at: srcPos{line: value.Line, col: value.Column}}
		switch value.Value {
		case "nil", "Nil", "NULL":
			n.Kind = "nil"
		}
		return nil
	}
	type plain rawNode
	return decodeAt(value, (*plain)(n), &n.at)
}

type rawEntry struct {
	Key   *rawNode `yaml:"key"`
	Value *rawNode `yaml:"value"`
}

// rawStmts is either a single statement or a sequence of statements forming a compound
// statement.
type rawStmts struct {
	nodes  []*rawNode
	single bool
	at     srcPos
}

func (s *rawStmts) UnmarshalYAML(value *yaml.Node) error {
	s.at = srcPos{line: value.Line, col: value.Column}
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&s.nodes)
	}
	var n rawNode
	if err := value.Decode(&n); err != nil {
		return err
	}
	s.nodes, s.single = []*rawNode{&n}, true
	return nil
}
