// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapping

import (
	"fmt"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// Kind distinguishes node and link bit positions.
type Kind int

const (
	KindNode Kind = iota
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Endpoint is one side of a link.
type Endpoint struct {
	Node      NodeID `json:"node" yaml:"node"`
	Name      string `json:"name" yaml:"name"`
	Interface uint   `json:"interface" yaml:"interface"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s-%d", e.Name, e.Interface)
}

// Ref is the topology element a bit position resolves to. For node positions
// only Node and Name are set, for link positions only A and B.
type Ref struct {
	Position uint
	Kind     Kind

	Node NodeID
	Name string

	A, B Endpoint
}

// NodeRef returns the reference of a node position.
func NodeRef(id NodeID, name string) Ref {
	return Ref{Position: uint(id), Kind: KindNode, Node: id, Name: name}
}

// LinkRef returns the reference of a link position.
func LinkRef(pos uint, a, b Endpoint) Ref {
	return Ref{Position: pos, Kind: KindLink, A: a, B: b}
}

// IsNode reports whether the reference denotes a node.
func (r Ref) IsNode() bool {
	return r.Kind == KindNode
}

func (r Ref) String() string {
	if r.IsNode() {
		return r.Name
	}
	return fmt.Sprintf("%s<->%s", r.A, r.B)
}

// Resolver resolves bit positions.
type Resolver interface {
	// NumPositions returns the size of the bit position space.
	NumPositions() uint
	// Resolve returns the topology element of position pos.
	Resolve(pos uint) (Ref, error)
}

var _ Resolver = (*Index)(nil)

// Resolve returns the reference for the bit position pos. It returns an error
// matching ErrIndex if pos is outside of [0, NumPositions()), and an error
// matching ErrInconsistent if the link recorded for pos is unknown.
func (x *Index) Resolve(pos uint) (Ref, error) {
	if pos >= x.NumPositions() {
		return Ref{}, serrors.JoinNoStack(ErrIndex, nil, "position", pos,
			"positions", x.NumPositions())
	}
	if pos < x.nbNodes {
		return NodeRef(NodeID(pos), x.names[pos]), nil
	}
	it := x.items[pos]
	if recorded, ok := x.LinkBetween(it.a, it.b); !ok || recorded != pos {
		return Ref{}, serrors.JoinNoStack(ErrInconsistent, nil, "position", pos,
			"node_id_1", it.a, "node_id_2", it.b)
	}
	a, err := x.endpoint(it.a, it.b)
	if err != nil {
		return Ref{}, serrors.WrapNoStack("resolving link", err, "position", pos)
	}
	b, err := x.endpoint(it.b, it.a)
	if err != nil {
		return Ref{}, serrors.WrapNoStack("resolving link", err, "position", pos)
	}
	return LinkRef(pos, a, b), nil
}

// MustResolve resolves pos and panics on error. It is intended for tests.
func (x *Index) MustResolve(pos uint) Ref {
	r, err := x.Resolve(pos)
	if err != nil {
		panic(err)
	}
	return r
}

func (x *Index) endpoint(node, peer NodeID) (Endpoint, error) {
	name, ok := x.NodeName(node)
	if !ok {
		return Endpoint{}, serrors.JoinNoStack(ErrInconsistent, nil, "node", node)
	}
	intf, ok := x.Interface(node, peer)
	if !ok {
		return Endpoint{}, serrors.JoinNoStack(ErrInconsistent, nil, "node", node,
			"peer", peer)
	}
	return Endpoint{Node: node, Name: name, Interface: intf}, nil
}
