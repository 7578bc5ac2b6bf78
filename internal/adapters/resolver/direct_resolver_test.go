package resolver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testZone = map[string][]string{
	"example.test. MX": {
		"example.test. 300 IN MX 20 mx2.example.test.",
		"example.test. 300 IN MX 10 mx1.example.test.",
	},
	"example.test. TXT": {
		`example.test. 300 IN TXT "v=spf1 " "include:_spf.example.test ~all"`,
		`example.test. 300 IN TXT "site-verification=1234"`,
	},
	"example.test. AAAA": {
		"example.test. 300 IN AAAA 2001:db8::25",
	},
}

// startDNSServer serves testZone over UDP on a loopback port. Names under
// nx.test do not exist and names under broken.test return SERVFAIL.
func startDNSServer(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)

		q := req.Question[0]
		switch {
		case dns.IsSubDomain("nx.test.", q.Name):
			resp.Rcode = dns.RcodeNameError
		case dns.IsSubDomain("broken.test.", q.Name):
			resp.Rcode = dns.RcodeServerFailure
		default:
			for _, line := range testZone[q.Name+" "+dns.TypeToString[q.Qtype]] {
				rr, err := dns.NewRR(line)
				if err == nil {
					resp.Answer = append(resp.Answer, rr)
				}
			}
		}
		_ = w.WriteMsg(resp)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = server.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

func newTestResolver(t *testing.T, servers ...string) *DirectResolver {
	return NewDirectResolver(servers, time.Second, zap.NewNop())
}

func TestDirectLookupMX(t *testing.T) {
	r := newTestResolver(t, startDNSServer(t))

	records, err := r.LookupMX(context.Background(), "example.test")
	require.NoError(t, err)

	assert.Equal(t, []core.MXRecord{
		{Host: "mx2.example.test", Priority: 20},
		{Host: "mx1.example.test", Priority: 10},
	}, records)
}

func TestDirectLookupTXTJoinsChunks(t *testing.T) {
	r := newTestResolver(t, startDNSServer(t))

	records, err := r.LookupTXT(context.Background(), "example.test")
	require.NoError(t, err)

	assert.Contains(t, records, "v=spf1 include:_spf.example.test ~all")
	assert.Contains(t, records, "site-verification=1234")
}

func TestDirectLookupAAAA(t *testing.T) {
	r := newTestResolver(t, startDNSServer(t))

	ips, err := r.LookupAAAA(context.Background(), "example.test")
	require.NoError(t, err)
	require.Len(t, ips, 1)
	assert.True(t, ips[0].Equal(net.ParseIP("2001:db8::25")))
}

func TestDirectDistinguishesNoDataFromNXDomain(t *testing.T) {
	r := newTestResolver(t, startDNSServer(t))
	ctx := context.Background()

	_, err := r.LookupAAAA(ctx, "nodata.example.test")
	assert.ErrorIs(t, err, core.ErrNoData)

	_, err = r.LookupTXT(ctx, "gone.nx.test")
	assert.ErrorIs(t, err, core.ErrNXDomain)
	assert.False(t, errors.Is(err, core.ErrNoData))

	_, err = r.LookupMX(ctx, "nx.test")
	assert.ErrorIs(t, err, core.ErrNXDomain)
}

func TestDirectServerFailureIsHardError(t *testing.T) {
	r := newTestResolver(t, startDNSServer(t))

	_, err := r.LookupTXT(context.Background(), "broken.test")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNoData))
	assert.False(t, errors.Is(err, core.ErrNXDomain))
}

func TestDirectFallsThroughUnreachableServer(t *testing.T) {
	dead, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.LocalAddr().String()
	require.NoError(t, dead.Close())

	r := NewDirectResolver([]string{deadAddr, startDNSServer(t)}, 200*time.Millisecond, zap.NewNop())

	records, err := r.LookupMX(context.Background(), "example.test")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWithPort(t *testing.T) {
	assert.Equal(t, "1.1.1.1:53", withPort("1.1.1.1"))
	assert.Equal(t, "1.1.1.1:5353", withPort("1.1.1.1:5353"))
	assert.Equal(t, "[2001:db8::1]:53", withPort("2001:db8::1"))
}
