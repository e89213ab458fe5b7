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

package syntax

import (
	"go/token"
	"strings"

	"go.uber.org/nullcheck/annotation"
)

// VarKind tells where a variable was declared.
type VarKind uint8

const (
	// LocalVar is a variable declared inside a body.
	LocalVar VarKind = iota
	// ParamVar is a method or block parameter.
	ParamVar
	// SelfVar is the implicit `self` parameter of a method.
	SelfVar
	// GlobalVar is a file-scope variable.
	GlobalVar
)

// Var is a variable declaration. Pointer identity is declaration identity: the environment is
// keyed by *Var.
type Var struct {
	Name string
	Type *Type
	Kind VarKind
	Loc  token.Position
}

// Declared returns the nullability written on the variable's type.
func (v *Var) Declared() annotation.Kind { return NullabilityOf(v.Type) }

// Pos returns the location of the declaration.
func (v *Var) Pos() token.Position { return v.Loc }

// Field is an instance variable.
type Field struct {
	Name string
	Type *Type
	Loc  token.Position
}

// Property is a declared property, optionally backed by an instance variable.
type Property struct {
	Name  string
	Type  *Type
	Field *Field
	Loc   token.Position
}

// ContainerKind distinguishes the declaration containers methods can live in.
type ContainerKind uint8

const (
	// InterfaceContainer is a class interface (including its extensions).
	InterfaceContainer ContainerKind = iota
	// ProtocolContainer is a protocol.
	ProtocolContainer
	// CategoryContainer is a named category on a class.
	CategoryContainer
)

// Container is a class interface, protocol, or category.
type Container struct {
	Kind ContainerKind
	Name string
	// Super is the superclass of an interface.
	Super *Container
	// Class is the interface a category extends.
	Class *Container
	// Protocols are the adopted (or, for protocols, inherited) protocols.
	Protocols []*Container
	// Categories are the categories declared on an interface.
	Categories []*Container
	Methods    []*Method
	Fields     []*Field
	Properties []*Property
	Loc        token.Position
}

// InstanceMethod returns the instance method with the given selector declared directly in c.
func (c *Container) InstanceMethod(selector string) *Method {
	return c.method(selector, true)
}

// ClassMethod returns the class method with the given selector declared directly in c.
func (c *Container) ClassMethod(selector string) *Method {
	return c.method(selector, false)
}

func (c *Container) method(selector string, instance bool) *Method {
	for _, m := range c.Methods {
		if m.Instance == instance && m.Selector == selector {
			return m
		}
	}
	return nil
}

// Method is a method declaration or definition.
type Method struct {
	Selector string
	Instance bool
	Params   []*Var
	Result   *Type
	// Container is the interface, protocol or category declaring the method.
	Container *Container
	// Designated marks designated initializers.
	Designated bool
	// Self is the implicit self parameter; nil for declarations without a body.
	Self *Var
	// Body is nil for declarations.
	Body *Compound
	Loc  token.Position
}

// Pos returns the location of the method.
func (m *Method) Pos() token.Position { return m.Loc }

// KindPrefix returns "-" for instance methods and "+" for class methods.
func (m *Method) KindPrefix() string {
	if m.Instance {
		return "-"
	}
	return "+"
}

// ContainerName returns the name of the declaring container, or the empty string if unknown.
func (m *Method) ContainerName() string {
	if m.Container == nil {
		return ""
	}
	if m.Container.Kind == CategoryContainer && m.Container.Class != nil {
		return m.Container.Class.Name
	}
	return m.Container.Name
}

// String returns the conventional spelling of the method, e.g., "-[Foo setBar:]".
func (m *Method) String() string {
	return m.KindPrefix() + "[" + m.ContainerName() + " " + m.Selector + "]"
}

// IsInitializer reports whether m belongs to the init method family or is explicitly marked as
// a designated initializer. The init family consists of instance methods whose selector is
// "init" or starts with "init" followed by an upper-case letter or a colon.
func (m *Method) IsInitializer() bool {
	if m.Designated {
		return true
	}
	return m.Instance && IsInitSelector(m.Selector)
}

// IsInitSelector reports whether the selector belongs to the init method family.
func IsInitSelector(selector string) bool {
	rest, ok := strings.CutPrefix(selector, "init")
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	c := rest[0]
	return c == ':' || ('A' <= c && c <= 'Z')
}

// Implementation holds the method definitions of a class.
type Implementation struct {
	Class   *Container
	Methods []*Method
	Loc     token.Position
}

// Name returns the implemented class name.
func (impl *Implementation) Name() string {
	if impl.Class == nil {
		return ""
	}
	return impl.Class.Name
}

// Unit is one translation unit.
type Unit struct {
	File            string
	Containers      []*Container
	Implementations []*Implementation
}
