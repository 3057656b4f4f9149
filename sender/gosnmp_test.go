// Copyright 2025 The snmptrap-gen Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sender

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/prometheus/common/promslog"
	"github.com/stretchr/testify/require"
)

const (
	trapTestAddress    = "127.0.0.1"
	trapTestPortString = "9163"
)

func TestNewGoSNMP(t *testing.T) {
	cases := []struct {
		target    string
		transport string
		host      string
		port      uint16
	}{
		{target: "localhost", transport: "udp", host: "localhost", port: 162},
		{target: "localhost:1162", transport: "udp", host: "localhost", port: 1162},
		{target: "tcp://10.0.0.1:10162", transport: "tcp", host: "10.0.0.1", port: 10162},
		{target: "[::1]:162", transport: "udp", host: "::1", port: 162},
		{target: "udp6://[::1]", transport: "udp6", host: "::1", port: 162},
	}
	for _, c := range cases {
		g, err := NewGoSNMP(promslog.NewNopLogger(), c.target, "", false)
		require.NoError(t, err)
		require.Equal(t, c.transport, g.c.Transport, c.target)
		require.Equal(t, c.host, g.c.Target, c.target)
		require.Equal(t, c.port, g.c.Port, c.target)
	}

	_, err := NewGoSNMP(promslog.NewNopLogger(), "localhost:99999", "", false)
	require.Error(t, err)
}

// listen starts a trap listener on loopback and returns the channel the
// received packets are delivered on.
func listen(t *testing.T) <-chan *gosnmp.SnmpPacket {
	t.Helper()
	received := make(chan *gosnmp.SnmpPacket, 1)
	tl := gosnmp.NewTrapListener()
	t.Cleanup(tl.Close)
	tl.Params = &gosnmp.GoSNMP{
		Version:   gosnmp.Version2c,
		Community: "public",
		Timeout:   2 * time.Second,
	}
	tl.OnNewTrap = func(p *gosnmp.SnmpPacket, _ *net.UDPAddr) {
		received <- p
	}

	errch := make(chan error, 1)
	go func() {
		if err := tl.Listen(net.JoinHostPort(trapTestAddress, trapTestPortString)); err != nil {
			errch <- err
		}
	}()
	select {
	case <-tl.Listening():
	case err := <-errch:
		t.Fatalf("error in listen: %v", err)
	}
	return received
}

func newLoopbackSender(t *testing.T) *GoSNMPWrapper {
	t.Helper()
	g, err := NewGoSNMP(promslog.NewNopLogger(), net.JoinHostPort(trapTestAddress, trapTestPortString), "", false)
	require.NoError(t, err)
	g.SetOptions(func(c *gosnmp.GoSNMP) {
		c.Version = gosnmp.Version2c
		c.Community = "public"
		c.Timeout = 2 * time.Second
		c.Retries = 1
	})
	require.NoError(t, g.Connect())
	t.Cleanup(func() { g.Close() })
	return g
}

func checkReceived(t *testing.T, received <-chan *gosnmp.SnmpPacket) {
	t.Helper()
	var p *gosnmp.SnmpPacket
	select {
	case p = <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trap to be received")
	}
	require.Len(t, p.Variables, 4)
	require.Equal(t, gosnmp.TimeTicks, p.Variables[0].Type)
	require.Equal(t, SnmpTrapOID, p.Variables[1].Name)
	require.Equal(t, ".1.3.6.1.4.1.9999.1", p.Variables[1].Value)
	require.Equal(t, ".1.3.6.1.4.1.9999.1.1", p.Variables[2].Name)
	require.Equal(t, gosnmp.Gauge32, p.Variables[2].Type)
	require.Equal(t, uint64(20), gosnmp.ToBigInt(p.Variables[2].Value).Uint64())
	require.Equal(t, []byte("dummy_display_string"), p.Variables[3].Value)
}

func TestSendTrap(t *testing.T) {
	received := listen(t)
	g := newLoopbackSender(t)

	var sent int
	g.SetOptions(func(c *gosnmp.GoSNMP) {
		c.OnSent = func(*gosnmp.GoSNMP) { sent++ }
	})

	res, err := g.Send(context.Background(), testDescriptor())
	require.NoError(t, err)
	require.Len(t, res.Bindings, 3)
	require.Equal(t, 1, sent)
	checkReceived(t, received)
}

func TestSendInform(t *testing.T) {
	received := listen(t)
	g := newLoopbackSender(t)
	g.SetInform(true)

	res, err := g.Send(context.Background(), testDescriptor())
	require.NoError(t, err)
	checkReceived(t, received)
	// The response echoes sysUpTime.0 ahead of the sent bindings.
	require.Len(t, res.Bindings, 4)
	require.Equal(t, SnmpTrapOID, res.Bindings[1].Name)
}

func TestSendCancelled(t *testing.T) {
	g := newLoopbackSender(t)
	g.SetInform(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Send(ctx, testDescriptor())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "udp://127.0.0.1:9163", te.Target)
}
