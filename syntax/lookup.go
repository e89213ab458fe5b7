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

// Scope indexes the containers of a unit by name so that receivers given only by their static
// type can be resolved.
type Scope struct {
	interfaces map[string]*Container
	protocols  map[string]*Container
}

// NewScope builds a scope over the containers of the given units.
func NewScope(units ...*Unit) *Scope {
	s := &Scope{
		interfaces: make(map[string]*Container),
		protocols:  make(map[string]*Container),
	}
	for _, u := range units {
		for _, c := range u.Containers {
			switch c.Kind {
			case InterfaceContainer:
				s.interfaces[c.Name] = c
			case ProtocolContainer:
				s.protocols[c.Name] = c
			}
		}
	}
	return s
}

// Interface returns the interface with the given name, nil if unknown.
func (s *Scope) Interface(name string) *Container { return s.interfaces[name] }

// Protocol returns the protocol with the given name, nil if unknown.
func (s *Scope) Protocol(name string) *Container { return s.protocols[name] }

// ResolveMessage returns the method a message send statically targets. If the front end
// already resolved it, that method is returned. Otherwise the selector is looked up from the
// static type of the receiver: for an instance of a class, the class, its categories and its
// protocols are searched before moving on to the superclass; for `id<P>` receivers the listed
// protocols are searched; for class messages the class methods of the receiving class and its
// superclasses are searched. Nil is returned for sends that cannot be resolved, e.g., messages
// to plain `id`.
func (s *Scope) ResolveMessage(msg *Message) *Method {
	if msg.Method != nil {
		return msg.Method
	}

	switch msg.ReceiverKind {
	case ClassReceiver, SuperClassReceiver:
		return LookupClassMethod(msg.Class, msg.Selector)
	case SuperInstanceReceiver:
		return LookupInstanceMethod(msg.Class, msg.Selector)
	}

	if msg.Receiver == nil {
		return nil
	}
	t := msg.Receiver.Type()
	if t == nil {
		return nil
	}
	switch t.Kind {
	case Object:
		if s != nil {
			if m := LookupInstanceMethod(s.Interface(t.Interface), msg.Selector); m != nil {
				return m
			}
		}
		return s.lookupProtocols(t.Protocols, msg.Selector)
	case QualifiedID:
		return s.lookupProtocols(t.Protocols, msg.Selector)
	}
	return nil
}

func (s *Scope) lookupProtocols(names []string, selector string) *Method {
	if s == nil {
		return nil
	}
	for _, name := range names {
		if m := lookupProtocol(s.Protocol(name), selector, true, nil); m != nil {
			return m
		}
	}
	return nil
}

// LookupInstanceMethod searches the class hierarchy rooted at iface for an instance method.
func LookupInstanceMethod(iface *Container, selector string) *Method {
	return lookupHierarchy(iface, selector, true)
}

// LookupClassMethod searches the class hierarchy rooted at iface for a class method.
func LookupClassMethod(iface *Container, selector string) *Method {
	return lookupHierarchy(iface, selector, false)
}

func lookupHierarchy(iface *Container, selector string, instance bool) *Method {
	// Cyclic superclass chains are malformed input; the seen set keeps us from looping on them.
	seen := make(map[*Container]bool)
	for c := iface; c != nil && !seen[c]; c = c.Super {
		seen[c] = true
		if m := c.method(selector, instance); m != nil {
			return m
		}
		for _, cat := range c.Categories {
			if m := cat.method(selector, instance); m != nil {
				return m
			}
		}
		for _, p := range c.Protocols {
			if m := lookupProtocol(p, selector, instance, nil); m != nil {
				return m
			}
		}
	}
	return nil
}

func lookupProtocol(p *Container, selector string, instance bool, seen map[*Container]bool) *Method {
	if p == nil || seen[p] {
		return nil
	}
	if m := p.method(selector, instance); m != nil {
		return m
	}
	if seen == nil {
		seen = make(map[*Container]bool)
	}
	seen[p] = true
	for _, inherited := range p.Protocols {
		if m := lookupProtocol(inherited, selector, instance, seen); m != nil {
			return m
		}
	}
	return nil
}
