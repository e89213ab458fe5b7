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

import (
	"fmt"
	"go/token"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/syntax"
)

// program accumulates the declarations of every unit loaded together, so that units can refer
// to classes and protocols declared in other units.
type program struct {
	interfaces map[string]*syntax.Container
	protocols  map[string]*syntax.Container
	globals    map[string]*syntax.Var
	// implicit holds the containers referenced but never declared, e.g., a superclass from a
	// framework header that was not dumped.
	implicit *syntax.Unit
	scope    *syntax.Scope
	errs     []error
}

func newProgram() *program {
	return &program{
		interfaces: make(map[string]*syntax.Container),
		protocols:  make(map[string]*syntax.Container),
		globals:    make(map[string]*syntax.Var),
		implicit:   &syntax.Unit{},
	}
}

func (p *program) interfaceNamed(name string) *syntax.Container {
	if c, ok := p.interfaces[name]; ok {
		return c
	}
	c := &syntax.Container{Kind: syntax.InterfaceContainer, Name: name}
	p.interfaces[name] = c
	p.implicit.Containers = append(p.implicit.Containers, c)
	return c
}

func (p *program) protocolNamed(name string) *syntax.Container {
	if c, ok := p.protocols[name]; ok {
		return c
	}
	c := &syntax.Container{Kind: syntax.ProtocolContainer, Name: name}
	p.protocols[name] = c
	p.implicit.Containers = append(p.implicit.Containers, c)
	return c
}

// unitBuilder converts one raw unit.
type unitBuilder struct {
	prog *program
	// source is the name of the document, file the name of the translation unit it describes.
	source, file string
	raw          *rawUnit
	unit         *syntax.Unit
	containers   []*syntax.Container
	defs         []methodDef
}

// methodDef pairs a method definition with its raw form until its body is built.
type methodDef struct {
	method *syntax.Method
	class  *syntax.Container
	raw    *rawMethod
}

func newUnitBuilder(prog *program, source string, raw *rawUnit) *unitBuilder {
	file := raw.File
	if file == "" {
		file = source
	}
	return &unitBuilder{
		prog:   prog,
		source: source,
		file:   file,
		raw:    raw,
		unit:   &syntax.Unit{File: file},
	}
}

// pos returns the position of a node: the explicit position if the document gives one, the
// position of the node in the document otherwise.
func (b *unitBuilder) pos(line, col int, at srcPos) token.Position {
	if line > 0 {
		return token.Position{Filename: b.file, Line: line, Column: col}
	}
	return token.Position{Filename: b.source, Line: at.line, Column: at.col}
}

func (b *unitBuilder) errorf(pos token.Position, format string, args ...any) {
	b.prog.errs = append(b.prog.errs, fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

func (b *unitBuilder) typ(raw *rawType) *syntax.Type {
	t, err := convertType(raw)
	if err != nil {
		b.errorf(b.pos(0, 0, raw.at), "%v", err)
	}
	return t
}

// declare registers the containers of the unit by name.
func (b *unitBuilder) declare() {
	for _, rc := range b.raw.Containers {
		pos := b.pos(rc.Line, rc.Col, rc.at)
		if rc.Name == "" {
			b.errorf(pos, "container without a name")
			b.containers = append(b.containers, nil)
			continue
		}

		var c *syntax.Container
		switch rc.Kind {
		case "", "interface":
			// A redeclaration (e.g., a class extension) adds to the existing interface.
			c = b.prog.interfaceNamed(rc.Name)
		case "protocol":
			c = b.prog.protocolNamed(rc.Name)
		case "category":
			c = &syntax.Container{Kind: syntax.CategoryContainer, Name: rc.Name}
		default:
			b.errorf(pos, "unknown container kind %q", rc.Kind)
			b.containers = append(b.containers, nil)
			continue
		}
		if c.Loc.Line == 0 {
			c.Loc = pos
		}
		b.unit.Containers = append(b.unit.Containers, c)
		b.containers = append(b.containers, c)
	}
}

// link resolves the references between containers and builds their members.
func (b *unitBuilder) link() {
	for i, rc := range b.raw.Containers {
		c := b.containers[i]
		if c == nil {
			continue
		}
		if rc.Super != "" {
			c.Super = b.prog.interfaceNamed(rc.Super)
		}
		for _, name := range rc.Protocols {
			c.Protocols = append(c.Protocols, b.prog.protocolNamed(name))
		}
		if c.Kind == syntax.CategoryContainer {
			if rc.Class == "" {
				b.errorf(c.Loc, "category %s without a class", c.Name)
			} else {
				c.Class = b.prog.interfaceNamed(rc.Class)
				c.Class.Categories = append(c.Class.Categories, c)
			}
		}

		for _, rf := range rc.Fields {
			pos := b.pos(rf.Line, rf.Col, rf.at)
			if rf.Type == nil {
				b.errorf(pos, "instance variable %s without a type", rf.Name)
				continue
			}
			c.Fields = append(c.Fields, &syntax.Field{Name: rf.Name, Type: b.typ(rf.Type), Loc: pos})
		}
		for _, rp := range rc.Properties {
			b.property(c, rp)
		}
		for _, rm := range rc.Methods {
			if rm.Body != nil {
				b.errorf(b.pos(rm.Line, rm.Col, rm.at), "method %s has a body outside of an implementation", rm.Selector)
			}
			m := b.method(rm, c)
			c.Methods = append(c.Methods, m)
		}
	}
}

func (b *unitBuilder) property(c *syntax.Container, rp *rawProperty) {
	pos := b.pos(rp.Line, rp.Col, rp.at)
	if rp.Type == nil {
		b.errorf(pos, "property %s without a type", rp.Name)
		return
	}
	p := &syntax.Property{Name: rp.Name, Type: b.typ(rp.Type), Loc: pos}

	owner := c
	if c.Kind == syntax.CategoryContainer && c.Class != nil {
		owner = c.Class
	}
	ivar := rp.Ivar
	if ivar == "" {
		ivar = "_" + rp.Name
	}
	p.Field = findField(owner, ivar)
	if p.Field == nil && rp.Ivar != "" {
		b.errorf(pos, "property %s: unknown instance variable %s", rp.Name, rp.Ivar)
	}
	c.Properties = append(c.Properties, p)
}

// method builds the declaration part of a method: its parameters and result.
func (b *unitBuilder) method(rm *rawMethod, c *syntax.Container) *syntax.Method {
	pos := b.pos(rm.Line, rm.Col, rm.at)
	if rm.Selector == "" {
		b.errorf(pos, "method without a selector")
	}
	m := &syntax.Method{
		Selector:   rm.Selector,
		Instance:   !rm.Class,
		Result:     b.typ(rm.Result),
		Container:  c,
		Designated: rm.Designated,
		Loc:        pos,
	}
	for _, rp := range rm.Params {
		m.Params = append(m.Params, b.param(rp))
	}
	return m
}

func (b *unitBuilder) param(rp *rawVar) *syntax.Var {
	pos := b.pos(rp.Line, rp.Col, rp.at)
	if rp.Type == nil {
		b.errorf(pos, "parameter %s without a type", rp.Name)
	}
	return &syntax.Var{Name: rp.Name, Type: b.typ(rp.Type), Kind: syntax.ParamVar, Loc: pos}
}

func (b *unitBuilder) declareGlobals() {
	for _, rv := range b.raw.Globals {
		pos := b.pos(rv.Line, rv.Col, rv.at)
		if rv.Type == nil {
			b.errorf(pos, "global %s without a type", rv.Name)
			continue
		}
		b.prog.globals[rv.Name] = &syntax.Var{Name: rv.Name, Type: b.typ(rv.Type), Kind: syntax.GlobalVar, Loc: pos}
	}
}

// implement creates the implementations of the unit and the headers of their methods. Methods
// defined without a declaration are added to their class so that sends to them resolve.
func (b *unitBuilder) implement() {
	for _, ri := range b.raw.Implementations {
		pos := b.pos(ri.Line, ri.Col, ri.at)
		class, ok := b.prog.interfaces[ri.Class]
		if !ok {
			b.errorf(pos, "implementation of unknown class %q", ri.Class)
			continue
		}
		impl := &syntax.Implementation{Class: class, Loc: pos}
		for _, rm := range ri.Methods {
			def := b.method(rm, class)
			if decl := ownDeclaration(class, def.Selector, def.Instance); decl != nil {
				mergeDeclaration(def, decl)
			} else {
				class.Methods = append(class.Methods, def)
			}
			def.Self = selfVar(class, def)
			impl.Methods = append(impl.Methods, def)
			b.defs = append(b.defs, methodDef{method: def, class: class, raw: rm})
		}
		b.unit.Implementations = append(b.unit.Implementations, impl)
	}
}

// ownDeclaration returns the declaration of a method in the class itself, its categories or
// the protocols it adopts, ignoring superclasses.
func ownDeclaration(class *syntax.Container, selector string, instance bool) *syntax.Method {
	iface := *class
	iface.Super = nil
	if instance {
		return syntax.LookupInstanceMethod(&iface, selector)
	}
	return syntax.LookupClassMethod(&iface, selector)
}

// mergeDeclaration makes a definition inherit the nullability written on its declaration where
// the definition does not spell one.
func mergeDeclaration(def, decl *syntax.Method) {
	def.Container = decl.Container
	def.Designated = def.Designated || decl.Designated
	for i, p := range def.Params {
		if i < len(decl.Params) {
			p.Type = inheritNullability(p.Type, decl.Params[i].Type)
		}
	}
	def.Result = inheritNullability(def.Result, decl.Result)
}

func inheritNullability(t, from *syntax.Type) *syntax.Type {
	if t == nil || from == nil || t.Nullability != annotation.Unspecified {
		return t
	}
	return t.WithNullability(from.Nullability)
}

func selfVar(class *syntax.Container, m *syntax.Method) *syntax.Var {
	t := &syntax.Type{Kind: syntax.Class, Name: "Class"}
	if m.Instance {
		t = objectType(class.Name)
	}
	return &syntax.Var{Name: "self", Type: t, Kind: syntax.SelfVar, Loc: m.Loc}
}

// findField looks an instance variable up in iface and its superclasses.
func findField(iface *syntax.Container, name string) *syntax.Field {
	seen := make(map[*syntax.Container]bool)
	for c := iface; c != nil && !seen[c]; c = c.Super {
		seen[c] = true
		for _, f := range c.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// findProperty looks a property up in iface, its categories and protocols, and its
// superclasses.
func findProperty(iface *syntax.Container, name string) *syntax.Property {
	seen := make(map[*syntax.Container]bool)
	var search func(c *syntax.Container) *syntax.Property
	search = func(c *syntax.Container) *syntax.Property {
		if c == nil || seen[c] {
			return nil
		}
		seen[c] = true
		for _, p := range c.Properties {
			if p.Name == name {
				return p
			}
		}
		for _, cat := range c.Categories {
			if p := search(cat); p != nil {
				return p
			}
		}
		for _, proto := range c.Protocols {
			if p := search(proto); p != nil {
				return p
			}
		}
		return search(c.Super)
	}
	return search(iface)
}
