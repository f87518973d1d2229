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

package trace

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/tidwall/gjson"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// Format is the encoding of capture artifacts.
type Format string

const (
	// FormatJSON is a JSON list with one element per packet, as written by
	// "tshark -T json".
	FormatJSON Format = "json"
	// FormatPcap is a pcap or pcapng file as written by tcpdump.
	FormatPcap Format = "pcap"
)

// ParseFormat parses a capture format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatPcap:
		return f, nil
	default:
		return "", serrors.New("unsupported capture format", "format", s)
	}
}

// CountJSON returns the length of the JSON list read from r. An input that
// only consists of white space is an empty capture.
func CountJSON(r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0, nil
	}
	if !gjson.ValidBytes(raw) {
		return 0, serrors.JoinNoStack(ErrMalformedArtifact, nil, "reason", "invalid JSON")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return 0, serrors.JoinNoStack(ErrMalformedArtifact, nil, "reason", "not a JSON list",
			"type", res.Type.String())
	}
	return int(res.Get("#").Int()), nil
}

// Filter selects the packets of a capture that are counted.
type Filter string

const (
	// FilterNone counts every packet.
	FilterNone Filter = ""
	// FilterIPv6 counts IPv6 packets.
	FilterIPv6 Filter = "ipv6"
	// FilterUDP counts UDP datagrams.
	FilterUDP Filter = "udp"
	// FilterBIER counts BIER packets: IPv6 with next header 253, or Ethernet
	// frames with the BIER EtherType.
	FilterBIER Filter = "bier"
)

const (
	// bierNextHeader is the IPv6 next header value used by the BIER daemon.
	bierNextHeader layers.IPProtocol = 253
	// bierEtherType is the EtherType assigned to BIER by RFC 8296.
	bierEtherType layers.EthernetType = 0xAB37
)

// ParseFilter parses a capture filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(s)); f {
	case FilterNone, FilterIPv6, FilterUDP, FilterBIER:
		return f, nil
	default:
		return "", serrors.New("unsupported capture filter", "filter", s)
	}
}

func (f Filter) match(p gopacket.Packet) bool {
	switch f {
	case FilterIPv6:
		return p.Layer(layers.LayerTypeIPv6) != nil
	case FilterUDP:
		return p.Layer(layers.LayerTypeUDP) != nil
	case FilterBIER:
		if eth, ok := p.Layer(layers.LayerTypeEthernet).(*layers.Ethernet); ok &&
			eth.EthernetType == bierEtherType {
			return true
		}
		ip, ok := p.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		return ok && ip.NextHeader == bierNextHeader
	default:
		return true
	}
}

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// CountPcap returns the number of packets in the pcap or pcapng stream r that
// match filter. An input without any byte is an empty capture, as left behind
// by a capture process that never saw a packet.
func CountPcap(r io.Reader, filter Filter) (int, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if len(magic) == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, serrors.JoinNoStack(ErrMalformedArtifact, err, "reason", "short header")
	}

	var src packetSource
	if bytes.Equal(magic, pcapngMagic) {
		src, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		src, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return 0, serrors.JoinNoStack(ErrMalformedArtifact, err, "reason", "invalid header",
			"magic", binary.BigEndian.Uint32(magic))
	}

	var count int
	for {
		data, _, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// A capture killed mid-write leaves a truncated last record.
			return count, nil
		}
		if err != nil {
			return 0, serrors.JoinNoStack(ErrMalformedArtifact, err, "reason", "invalid record",
				"record", count)
		}
		if filter == FilterNone {
			count++
			continue
		}
		p := gopacket.NewPacket(data, src.LinkType(), gopacket.DecodeOptions{
			Lazy:   true,
			NoCopy: true,
		})
		if filter.match(p) {
			count++
		}
	}
}
