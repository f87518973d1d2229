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

package trace_test

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierproto/bierverify/private/trace"
)

var (
	srcMAC = net.HardwareAddr{0x02, 0, 0, 0, 0, 0x0a}
	dstMAC = net.HardwareAddr{0x02, 0, 0, 0, 0, 0x0b}
	srcIP  = net.ParseIP("fc00::a")
	dstIP  = net.ParseIP("fc00::b")
)

func serialize(t *testing.T, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{
		FixLengths: true,
	}, l...))
	return buf.Bytes()
}

// bierPacket is a BIER packet carried in IPv6, as sent by the BIER daemon.
func bierPacket(t *testing.T) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv6},
		&layers.IPv6{Version: 6, HopLimit: 64, NextHeader: 253, SrcIP: srcIP, DstIP: dstIP},
		gopacket.Payload(bytes.Repeat([]byte{0x50}, 32)),
	)
}

// mplsBIERPacket is a BIER frame with the RFC 8296 EtherType.
func mplsBIERPacket(t *testing.T) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: 0xAB37},
		gopacket.Payload(bytes.Repeat([]byte{0x50}, 32)),
	)
}

func udpPacket(t *testing.T) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv6},
		&layers.IPv6{Version: 6, HopLimit: 64, NextHeader: layers.IPProtocolUDP,
			SrcIP: srcIP, DstIP: dstIP},
		&layers.UDP{SrcPort: 8000, DstPort: 8000},
		gopacket.Payload([]byte("hello")),
	)
}

func arpPacket(t *testing.T) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: layers.EthernetBroadcast,
			EthernetType: layers.EthernetTypeARP},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   srcMAC,
			SourceProtAddress: []byte{10, 0, 0, 1},
			DstHwAddress:      make([]byte, 6),
			DstProtAddress:    []byte{10, 0, 0, 2},
		},
	)
}

func pcapFile(t *testing.T, pkts ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	for _, pkt := range pkts {
		c := gopacket.CaptureInfo{
			Length:        len(pkt),
			CaptureLength: len(pkt),
		}
		require.NoError(t, w.WritePacket(c, pkt))
	}
	return buf.Bytes()
}

func pcapngFile(t *testing.T, pkts ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeEthernet)
	require.NoError(t, err)
	for _, pkt := range pkts {
		c := gopacket.CaptureInfo{
			Length:        len(pkt),
			CaptureLength: len(pkt),
		}
		require.NoError(t, w.WritePacket(c, pkt))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func TestCountJSON(t *testing.T) {
	testCases := map[string]struct {
		File      string
		Expected  int
		Assertion assert.ErrorAssertionFunc
	}{
		"tshark list": {
			File:      "a-0.json",
			Expected:  3,
			Assertion: assert.NoError,
		},
		"compact list": {
			File:      "b-0.json",
			Expected:  3,
			Assertion: assert.NoError,
		},
		"empty list": {
			File:      "c-0.json",
			Assertion: assert.NoError,
		},
		"white space only": {
			File:      "d-0.json",
			Assertion: assert.NoError,
		},
		"truncated": {
			File: "broken-0.json",
			Assertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, trace.ErrMalformedArtifact)
			},
		},
		"object": {
			File: "object-0.json",
			Assertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, trace.ErrMalformedArtifact)
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("testdata", "run", tc.File))
			require.NoError(t, err)
			n, err := trace.CountJSON(bytes.NewReader(raw))
			tc.Assertion(t, err)
			assert.Equal(t, tc.Expected, n)
		})
	}
}

func TestCountJSONEmptyInput(t *testing.T) {
	n, err := trace.CountJSON(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountPcap(t *testing.T) {
	mixed := func(t *testing.T) [][]byte {
		return [][]byte{
			bierPacket(t), udpPacket(t), arpPacket(t), mplsBIERPacket(t), bierPacket(t),
		}
	}
	testCases := map[string]struct {
		Input    func(t *testing.T) []byte
		Filter   trace.Filter
		Expected int
	}{
		"zero bytes": {
			Input: func(*testing.T) []byte { return nil },
		},
		"header only": {
			Input: func(t *testing.T) []byte { return pcapFile(t) },
		},
		"all packets": {
			Input:    func(t *testing.T) []byte { return pcapFile(t, mixed(t)...) },
			Expected: 5,
		},
		"ipv6 packets": {
			Input:    func(t *testing.T) []byte { return pcapFile(t, mixed(t)...) },
			Filter:   trace.FilterIPv6,
			Expected: 3,
		},
		"udp packets": {
			Input:    func(t *testing.T) []byte { return pcapFile(t, mixed(t)...) },
			Filter:   trace.FilterUDP,
			Expected: 1,
		},
		"bier packets": {
			Input:    func(t *testing.T) []byte { return pcapFile(t, mixed(t)...) },
			Filter:   trace.FilterBIER,
			Expected: 3,
		},
		"pcapng": {
			Input:    func(t *testing.T) []byte { return pcapngFile(t, mixed(t)...) },
			Filter:   trace.FilterBIER,
			Expected: 3,
		},
		"truncated last record": {
			Input: func(t *testing.T) []byte {
				raw := pcapFile(t, bierPacket(t), bierPacket(t))
				return raw[:len(raw)-5]
			},
			Expected: 1,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			n, err := trace.CountPcap(bytes.NewReader(tc.Input(t)), tc.Filter)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, n)
		})
	}
}

func TestCountPcapMalformed(t *testing.T) {
	testCases := map[string][]byte{
		"short header": {0xd4, 0xc3},
		"bad magic":    bytes.Repeat([]byte{0xff}, 24),
	}
	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := trace.CountPcap(bytes.NewReader(input), trace.FilterNone)
			assert.ErrorIs(t, err, trace.ErrMalformedArtifact)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := trace.ParseFormat("PCAP")
	require.NoError(t, err)
	assert.Equal(t, trace.FormatPcap, f)
	_, err = trace.ParseFormat("csv")
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	for _, s := range []string{"", "ipv6", "udp", "BIER"} {
		_, err := trace.ParseFilter(s)
		assert.NoError(t, err, s)
	}
	_, err := trace.ParseFilter("tcp")
	assert.Error(t, err)
}
