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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// MaxPositions bounds the size of the bit position space of a mapping.
const MaxPositions = 1 << 16

// LoadFile parses the mapping file at path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, serrors.Wrap("opening mapping file", err, "file", path)
	}
	defer f.Close()
	x, err := Parse(f)
	if err != nil {
		return nil, serrors.WrapNoStack("loading mapping file", err, "file", path)
	}
	return x, nil
}

// Parse reads a mapping with the following line grammar:
//
//	<nb_nodes> <nb_links>
//	<node_bit_position> <node_name>              (nb_nodes times)
//	<node_id_1> <node_id_2> <link_bit_position>  (nb_links times)
//
// Fields are separated by whitespace. Blank lines and lines starting with '#'
// are ignored. All returned errors match ErrParse and carry the offending line
// number.
func Parse(r io.Reader) (*Index, error) {
	p := parser{scanner: bufio.NewScanner(r)}

	header, err := p.next(2)
	if err != nil {
		return nil, err
	}
	nbNodes, err := p.uint(header[0], "nb_nodes")
	if err != nil {
		return nil, err
	}
	nbLinks, err := p.uint(header[1], "nb_links")
	if err != nil {
		return nil, err
	}

	if nbNodes+nbLinks > MaxPositions {
		return nil, p.errorf("too many bit positions", "nb_nodes", nbNodes,
			"nb_links", nbLinks, "max", MaxPositions)
	}

	x := &Index{
		nbNodes: nbNodes,
		nbLinks: nbLinks,
		names:   make([]string, nbNodes),
		byName:  make(map[string]NodeID, nbNodes),
		links:   make(map[Pair]uint, nbLinks),
		items:   make([]item, nbNodes+nbLinks),
	}
	seen := make([]bool, nbNodes+nbLinks)

	for i := uint(0); i < nbNodes; i++ {
		fields, err := p.next(2)
		if err != nil {
			return nil, err
		}
		pos, err := p.uint(fields[0], "node_bit_position")
		if err != nil {
			return nil, err
		}
		name := fields[1]
		if pos >= nbNodes {
			return nil, p.errorf("node bit position out of range",
				"position", pos, "nb_nodes", nbNodes)
		}
		if seen[pos] {
			return nil, p.errorf("duplicate node bit position", "position", pos)
		}
		if _, ok := x.byName[name]; ok {
			return nil, p.errorf("duplicate node name", "name", name)
		}
		seen[pos] = true
		x.names[pos] = name
		x.byName[name] = NodeID(pos)
		x.items[pos] = item{name: name}
	}

	for i := uint(0); i < nbLinks; i++ {
		fields, err := p.next(3)
		if err != nil {
			return nil, err
		}
		a, err := p.uint(fields[0], "node_id_1")
		if err != nil {
			return nil, err
		}
		b, err := p.uint(fields[1], "node_id_2")
		if err != nil {
			return nil, err
		}
		pos, err := p.uint(fields[2], "link_bit_position")
		if err != nil {
			return nil, err
		}
		switch {
		case a >= nbNodes || b >= nbNodes:
			return nil, p.errorf("link endpoint is not a node",
				"node_id_1", a, "node_id_2", b, "nb_nodes", nbNodes)
		case a == b:
			return nil, p.errorf("link connects a node to itself", "node", a)
		case pos < nbNodes || pos >= nbNodes+nbLinks:
			return nil, p.errorf("link bit position out of range", "position", pos,
				"first", nbNodes, "last", nbNodes+nbLinks-1)
		case seen[pos]:
			return nil, p.errorf("duplicate link bit position", "position", pos)
		}
		key := MakePair(NodeID(a), NodeID(b))
		if prev, ok := x.links[key]; ok {
			return nil, p.errorf("duplicate link declaration", "node_id_1", a,
				"node_id_2", b, "declared_as", prev)
		}
		seen[pos] = true
		x.links[key] = pos
		x.items[pos] = item{a: NodeID(a), b: NodeID(b)}
		x.declared = append(x.declared, Link{Position: pos, A: NodeID(a), B: NodeID(b)})
	}

	if err := p.trailing(); err != nil {
		return nil, err
	}
	x.buildInterfaces()
	return x, nil
}

type parser struct {
	scanner *bufio.Scanner
	line    int
}

// next returns the fields of the next record, which must have exactly n
// fields.
func (p *parser) next(n int) ([]string, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != n {
			return nil, p.errorf("unexpected number of fields",
				"expected", n, "actual", len(fields))
		}
		return fields, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, serrors.Join(ErrParse, err, "line", p.line)
	}
	return nil, p.errorf("unexpected end of mapping", "expected_fields", n)
}

func (p *parser) trailing() error {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return p.errorf("unexpected content after declared records")
	}
	if err := p.scanner.Err(); err != nil {
		return serrors.Join(ErrParse, err, "line", p.line)
	}
	return nil
}

func (p *parser) uint(s, field string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, serrors.Join(ErrParse, err, "line", p.line, "field", field)
	}
	return uint(v), nil
}

func (p *parser) errorf(msg string, errCtx ...any) error {
	return serrors.Join(ErrParse, serrors.New(msg, errCtx...), "line", p.line)
}
