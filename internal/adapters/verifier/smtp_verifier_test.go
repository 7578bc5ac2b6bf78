package verifier

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mxResolver struct {
	records []core.MXRecord
	err     error
}

func (r *mxResolver) LookupMX(context.Context, string) ([]core.MXRecord, error) {
	return r.records, r.err
}

func (r *mxResolver) LookupTXT(context.Context, string) ([]string, error) {
	return nil, core.ErrNoData
}

func (r *mxResolver) LookupAAAA(context.Context, string) ([]net.IP, error) {
	return nil, core.ErrNoData
}

// fixedDialer connects every host to one address and counts the dials
type fixedDialer struct {
	mu     sync.Mutex
	target string
	dials  int
}

func (d *fixedDialer) DialContext(ctx context.Context, network, _ string) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	target := d.target
	d.mu.Unlock()

	if target == "" {
		return nil, errors.New("connection refused")
	}
	var nd net.Dialer
	return nd.DialContext(ctx, network, target)
}

// mailboxBackend accepts the listed mailboxes and answers everything else
// with rejectCode
type mailboxBackend struct {
	mailboxes  map[string]bool
	rejectCode int

	mu      sync.Mutex
	helo    string
	senders []string
}

func (b *mailboxBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &mailboxSession{backend: b, conn: c}, nil
}

type mailboxSession struct {
	backend *mailboxBackend
	conn    *smtp.Conn
}

func (s *mailboxSession) Reset()        {}
func (s *mailboxSession) Logout() error { return nil }

func (s *mailboxSession) Mail(from string, _ *smtp.MailOptions) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.helo = s.conn.Hostname()
	s.backend.senders = append(s.backend.senders, from)
	return nil
}

func (s *mailboxSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if s.backend.mailboxes[strings.ToLower(to)] {
		return nil
	}
	return &smtp.SMTPError{Code: s.backend.rejectCode, Message: "mailbox unavailable"}
}

func (s *mailboxSession) Data(io.Reader) error { return nil }

func startServer(t *testing.T, be *mailboxBackend) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := smtp.NewServer(be)
	server.Domain = "mx.example.test"
	server.ReadTimeout = 5 * time.Second
	server.WriteTimeout = 5 * time.Second
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { server.Close() })

	return ln.Addr().String()
}

func newTestVerifier(dialer *fixedDialer, records ...core.MXRecord) *SMTPVerifier {
	if len(records) == 0 {
		records = []core.MXRecord{{Host: "mx.example.test", Priority: 10}}
	}
	return NewSMTPVerifier(&mxResolver{records: records}, Config{
		FQDN:     "checker.example.net",
		Sender:   "probe@checker.example.net",
		Timeout:  2 * time.Second,
		Attempts: 2,
		Dialer:   dialer,
	}, zap.NewNop())
}

func TestVerifyAcceptedMailbox(t *testing.T) {
	be := &mailboxBackend{mailboxes: map[string]bool{"alice@example.test": true}, rejectCode: 550}
	v := newTestVerifier(&fixedDialer{target: startServer(t, be)})

	result, err := v.Verify(context.Background(), "alice@example.test")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "mx.example.test", result.Host)

	be.mu.Lock()
	defer be.mu.Unlock()
	assert.Equal(t, "checker.example.net", be.helo)
	assert.Equal(t, []string{"probe@checker.example.net"}, be.senders)
}

func TestVerifyRejectedMailbox(t *testing.T) {
	be := &mailboxBackend{rejectCode: 550}
	dialer := &fixedDialer{target: startServer(t, be)}
	v := newTestVerifier(dialer)

	result, err := v.Verify(context.Background(), "nobody@example.test")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "mailbox unavailable", result.Message)
	assert.Equal(t, 1, dialer.dials)
}

func TestVerifyTemporaryFailureIsInconclusive(t *testing.T) {
	be := &mailboxBackend{rejectCode: 450}
	dialer := &fixedDialer{target: startServer(t, be)}
	v := newTestVerifier(dialer)

	_, err := v.Verify(context.Background(), "someone@example.test")
	assert.ErrorIs(t, err, ErrInconclusive)
	assert.Equal(t, 2, dialer.dials)
}

func TestVerifyUnreachableExchanges(t *testing.T) {
	dialer := &fixedDialer{}
	v := newTestVerifier(dialer,
		core.MXRecord{Host: "mx2.example.test", Priority: 20},
		core.MXRecord{Host: "mx1.example.test", Priority: 10},
	)

	_, err := v.Verify(context.Background(), "someone@example.test")
	assert.ErrorIs(t, err, ErrInconclusive)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 2, dialer.dials)
}

func TestVerifyInvalidFormat(t *testing.T) {
	dialer := &fixedDialer{}
	v := newTestVerifier(dialer)

	result, err := v.Verify(context.Background(), "not an address")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Zero(t, dialer.dials)
}

func TestVerifyLookupFailure(t *testing.T) {
	v := NewSMTPVerifier(&mxResolver{err: core.ErrNXDomain}, Config{}, zap.NewNop())

	_, err := v.Verify(context.Background(), "someone@gone.test")
	assert.ErrorIs(t, err, core.ErrNXDomain)
}
