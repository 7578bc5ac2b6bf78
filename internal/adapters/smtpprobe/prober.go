package smtpprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

const (
	// DefaultPort is the SMTP port probed on each exchange
	DefaultPort = 25
	// DefaultTimeout bounds one host attempt from dial to QUIT
	DefaultTimeout = 5 * time.Second
)

// Dialer opens the TCP connection to an exchange
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config holds the prober settings
type Config struct {
	Port    int
	Timeout time.Duration
	Dialer  Dialer
}

// Prober checks whether a domain accepts RCPT TO for a mailbox that
// cannot exist
type Prober struct {
	resolver     core.Resolver
	dialer       Dialer
	port         int
	timeout      time.Duration
	newLocalPart func() string
	logger       *zap.Logger
}

// NewProber creates a new catch-all prober
func NewProber(resolver core.Resolver, cfg Config, logger *zap.Logger) *Prober {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}

	return &Prober{
		resolver:     resolver,
		dialer:       cfg.Dialer,
		port:         cfg.Port,
		timeout:      cfg.Timeout,
		newLocalPart: syntheticLocalPart,
		logger:       logger,
	}
}

// NewSOCKS5Dialer returns a dialer that reaches exchanges through a SOCKS5 proxy
func NewSOCKS5Dialer(address, username, password string) (Dialer, error) {
	var auth *proxy.Auth
	if username != "" {
		auth = &proxy.Auth{User: username, Password: password}
	}

	d, err := proxy.SOCKS5("tcp", address, auth, &net.Dialer{})
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", address)
	}
	return cd, nil
}

func syntheticLocalPart() string {
	return "nx" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsCatchAll probes the exchanges of domain in ascending priority order and
// stops at the first one that accepts the synthetic recipient. Lookup and
// transport failures count as "not catch-all".
func (p *Prober) IsCatchAll(ctx context.Context, domain string) bool {
	domain = strings.ToLower(domain)

	records, err := p.resolver.LookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		p.logger.Debug("No exchanges to probe", zap.String("domain", domain), zap.Error(err))
		return false
	}

	recipient := p.newLocalPart() + "@" + domain
	for _, mx := range core.SortByPriority(records) {
		if ctx.Err() != nil {
			return false
		}

		catchAll, err := p.probeHost(ctx, mx.Host, domain, recipient)
		if err != nil {
			p.logger.Debug("Catch-all probe attempt failed",
				zap.String("domain", domain),
				zap.String("host", mx.Host),
				zap.Error(err))
			continue
		}
		if catchAll {
			p.logger.Debug("Domain accepts any recipient",
				zap.String("domain", domain),
				zap.String("host", mx.Host))
			return true
		}
	}

	return false
}

// probeHost runs one conversation against a single exchange. The whole
// attempt shares one deadline; on expiry the connection is closed under
// the blocked read.
func (p *Prober) probeHost(ctx context.Context, host, domain, recipient string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addr := net.JoinHostPort(strings.TrimSuffix(host, "."), strconv.Itoa(p.port))
	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	return converse(textproto.NewConn(conn), newSession(domain, recipient))
}

// converse reads one complete, possibly multi-line reply at a time and
// only then lets the session choose the next command
func converse(tp *textproto.Conn, sess *session) (bool, error) {
	for !sess.done() {
		code, _, err := tp.ReadResponse(0)
		if err != nil {
			if sess.state == stateAfterQuit && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
				return sess.result(), nil
			}
			return false, fmt.Errorf("reading reply in state %s: %w", sess.state, err)
		}

		cmd := sess.advance(code)
		if cmd == "" {
			break
		}
		if err := tp.PrintfLine("%s", cmd); err != nil {
			if sess.done() {
				break
			}
			return false, fmt.Errorf("sending %q: %w", cmd, err)
		}
	}

	return sess.result(), nil
}
