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

// DropLink removes the link table entry of {a, b}, leaving the bit position
// pointing to an undeclared link.
func (x *Index) DropLink(a, b NodeID) {
	delete(x.links, MakePair(a, b))
}

// DropInterface removes the interface entry of node toward peer.
func (x *Index) DropInterface(node, peer NodeID) {
	delete(x.intfs, adjacency{node: node, peer: peer})
}
