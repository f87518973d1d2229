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

// Package mapping parses the bit-position to topology mapping of a BIER-TE
// deployment and resolves bit positions to nodes and links.
//
// The identifier space is [0, nb_nodes+nb_links). Positions below nb_nodes
// denote nodes, the node's position being its node ID. The remaining positions
// denote links. Interfaces of a node are numbered 0..k-1 by ascending peer node
// ID.
//
// An Index is immutable once parsed and safe for concurrent use.
package mapping

import (
	"errors"
	"sort"
)

var (
	// ErrParse indicates a malformed mapping file.
	ErrParse = errors.New("malformed mapping")
	// ErrIndex indicates a bit position outside of the declared range.
	ErrIndex = errors.New("bit position out of range")
	// ErrInconsistent indicates that the mapping refers to a link or interface
	// that was never declared. It matches ErrIndex as well.
	ErrInconsistent = inconsistentError{}
)

type inconsistentError struct{}

func (inconsistentError) Error() string { return "inconsistent link mapping" }

func (inconsistentError) Is(target error) bool { return target == ErrIndex }

// NodeID identifies a node. It is equal to the node's bit position.
type NodeID uint

// Pair is an unordered pair of nodes. Use MakePair to obtain the normalized
// form that is used as map key.
type Pair struct {
	Lo, Hi NodeID
}

// MakePair returns the normalized pair {a, b}.
func MakePair(a, b NodeID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

type adjacency struct {
	node, peer NodeID
}

// item is the topology element a bit position maps to. Links keep their
// endpoints in declaration order.
type item struct {
	name string
	a, b NodeID
}

// Link is a declared link.
type Link struct {
	Position uint
	A, B     NodeID
}

// Index is the parsed mapping.
type Index struct {
	nbNodes uint
	nbLinks uint

	names  []string
	byName map[string]NodeID
	// links is keyed by the normalized pair.
	links map[Pair]uint
	items []item
	intfs map[adjacency]uint
	peers [][]NodeID
	// declared keeps the links in declaration order.
	declared []Link
}

// NumNodes returns the number of nodes.
func (x *Index) NumNodes() uint {
	return x.nbNodes
}

// NumLinks returns the number of links.
func (x *Index) NumLinks() uint {
	return x.nbLinks
}

// NumPositions returns the size of the bit position space.
func (x *Index) NumPositions() uint {
	return x.nbNodes + x.nbLinks
}

// IsNode reports whether position p denotes a node.
func (x *Index) IsNode(p uint) bool {
	return p < x.nbNodes
}

// NodeName returns the name of node id.
func (x *Index) NodeName(id NodeID) (string, bool) {
	if uint(id) >= x.nbNodes {
		return "", false
	}
	return x.names[id], true
}

// NodeByName returns the ID of the node with the given name.
func (x *Index) NodeByName(name string) (NodeID, bool) {
	id, ok := x.byName[name]
	return id, ok
}

// LinkBetween returns the bit position of the link between a and b. The lookup
// is symmetric.
func (x *Index) LinkBetween(a, b NodeID) (uint, bool) {
	p, ok := x.links[MakePair(a, b)]
	return p, ok
}

// Interface returns the local interface index of node toward peer.
func (x *Index) Interface(node, peer NodeID) (uint, bool) {
	i, ok := x.intfs[adjacency{node: node, peer: peer}]
	return i, ok
}

// Peers returns the peers of node ordered by interface index.
func (x *Index) Peers(node NodeID) []NodeID {
	if uint(node) >= x.nbNodes {
		return nil
	}
	return append([]NodeID(nil), x.peers[node]...)
}

// Links returns the links in declaration order.
func (x *Index) Links() []Link {
	return append([]Link(nil), x.declared...)
}

// buildInterfaces numbers the interfaces of every node by ascending peer ID.
func (x *Index) buildInterfaces() {
	x.peers = make([][]NodeID, x.nbNodes)
	for _, l := range x.declared {
		x.peers[l.A] = append(x.peers[l.A], l.B)
		x.peers[l.B] = append(x.peers[l.B], l.A)
	}
	x.intfs = make(map[adjacency]uint, 2*len(x.declared))
	for node, peers := range x.peers {
		sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
		for intf, peer := range peers {
			x.intfs[adjacency{node: NodeID(node), peer: peer}] = uint(intf)
		}
	}
}
