package signals

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeResolver struct {
	mx      []core.MXRecord
	mxErr   error
	txt     []string
	txtErr  error
	aaaa    []net.IP
	aaaaErr error
	delay   time.Duration
}

func (r *fakeResolver) wait(ctx context.Context) error {
	if r.delay == 0 {
		return nil
	}
	select {
	case <-time.After(r.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *fakeResolver) LookupMX(ctx context.Context, _ string) ([]core.MXRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.mx, r.mxErr
}

func (r *fakeResolver) LookupTXT(ctx context.Context, _ string) ([]string, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.txt, r.txtErr
}

func (r *fakeResolver) LookupAAAA(ctx context.Context, _ string) ([]net.IP, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.aaaa, r.aaaaErr
}

func newCollector(r core.Resolver) *DNSCollector {
	return NewDNSCollector(r, whitelist.NewSet(whitelist.DefaultMajorProviders, nil), time.Second, zap.NewNop())
}

func TestCollectHealthyDomain(t *testing.T) {
	r := &fakeResolver{
		mx:   []core.MXRecord{{Host: "mail.example.org", Priority: 10}},
		txt:  []string{"google-site-verification=abc", "v=spf1 include:_spf.example.org ~all"},
		aaaa: []net.IP{net.ParseIP("2001:db8::1")},
	}

	got := newCollector(r).Collect(context.Background(), "example.org")

	assert.Equal(t, core.DNSSignals{
		MXRecordsFound:   true,
		SPFRecordFound:   true,
		AAAARecordsFound: true,
	}, got)
}

func TestCollectMajorProvider(t *testing.T) {
	r := &fakeResolver{
		mx: []core.MXRecord{{Host: "mx.gmail-smtp-in.l.google.com", Priority: 5}},
	}

	got := newCollector(r).Collect(context.Background(), "Gmail.com")

	assert.True(t, got.IsMajorProvider)
	assert.True(t, got.MXRecordsFound)
	assert.False(t, got.SuspiciousMXHostname)
}

func TestCollectSuspiciousExchange(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"mx.tempmail-host.net", true},
		{"in.GuerrillaMail.biz", true},
		{"mail.mailinator.com", true},
		{"mx.somehost.io", true},
		{"mail.somehost.io", false},
		{"mx.throwaway.test", false},
		{"mx1.tempmail.throwaway.test", false},
		{"mx.outlook.com", false},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			r := &fakeResolver{mx: []core.MXRecord{{Host: tc.host + ".", Priority: 10}}}
			got := newCollector(r).Collect(context.Background(), "throwaway.test")
			assert.True(t, got.MXRecordsFound)
			assert.Equal(t, tc.want, got.SuspiciousMXHostname)
		})
	}
}

func TestCollectPicksLowestPriorityExchange(t *testing.T) {
	r := &fakeResolver{mx: []core.MXRecord{
		{Host: "backup.example.net", Priority: 30},
		{Host: "mx.tempmail.io", Priority: 5},
		{Host: "secondary.example.net", Priority: 20},
	}}

	got := newCollector(r).Collect(context.Background(), "example.net")

	assert.True(t, got.SuspiciousMXHostname)
}

func TestCollectMXFailures(t *testing.T) {
	for name, r := range map[string]*fakeResolver{
		"no data":  {mxErr: core.ErrNoData},
		"nxdomain": {mxErr: core.ErrNXDomain},
		"servfail": {mxErr: errors.New("server failure")},
		"empty":    {},
	} {
		t.Run(name, func(t *testing.T) {
			got := newCollector(r).Collect(context.Background(), "example.org")
			assert.False(t, got.MXRecordsFound)
			assert.False(t, got.SuspiciousMXHostname)
		})
	}
}

func TestCollectSPFClassification(t *testing.T) {
	cases := []struct {
		name       string
		txt        []string
		err        error
		wantFound  bool
		wantFailed bool
	}{
		{"spf present", []string{"v=spf1 -all"}, nil, true, false},
		{"other txt only", []string{"hello", "spf1 v="}, nil, false, false},
		{"no data", nil, core.ErrNoData, false, false},
		{"wrapped no data", nil, fmt.Errorf("lookup: %w", core.ErrNoData), false, false},
		{"nxdomain", nil, core.ErrNXDomain, false, true},
		{"timeout", nil, context.DeadlineExceeded, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeResolver{txt: tc.txt, txtErr: tc.err}
			got := newCollector(r).Collect(context.Background(), "example.org")
			assert.Equal(t, tc.wantFound, got.SPFRecordFound)
			assert.Equal(t, tc.wantFailed, got.SPFLookupFailed)
		})
	}
}

func TestCollectAAAAClassification(t *testing.T) {
	cases := []struct {
		name       string
		ips        []net.IP
		err        error
		wantFound  bool
		wantFailed bool
	}{
		{"found", []net.IP{net.ParseIP("2001:db8::2")}, nil, true, false},
		{"empty answer", nil, nil, false, false},
		{"no data", nil, core.ErrNoData, false, false},
		{"nxdomain", nil, core.ErrNXDomain, false, true},
		{"refused", nil, errors.New("refused"), false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeResolver{aaaa: tc.ips, aaaaErr: tc.err}
			got := newCollector(r).Collect(context.Background(), "example.org")
			assert.Equal(t, tc.wantFound, got.AAAARecordsFound)
			assert.Equal(t, tc.wantFailed, got.AAAALookupFailed)
		})
	}
}

func TestCollectRespectsTimeout(t *testing.T) {
	r := &fakeResolver{
		mx:    []core.MXRecord{{Host: "mail.example.org", Priority: 10}},
		delay: time.Second,
	}
	c := NewDNSCollector(r, nil, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	got := c.Collect(context.Background(), "example.org")

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, got.MXRecordsFound)
	assert.True(t, got.SPFLookupFailed)
	assert.True(t, got.AAAALookupFailed)
}
