package verifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/emersion/go-smtp"
	"github.com/razavidev/dea-detector/internal/adapters/smtpprobe"
	"github.com/razavidev/dea-detector/internal/core"
	"go.uber.org/zap"
)

// ErrInconclusive is returned when no exchange gave a definitive answer
var ErrInconclusive = errors.New("mailbox verification inconclusive")

// Config holds the verifier settings
type Config struct {
	Port     int
	FQDN     string
	Sender   string
	Timeout  time.Duration
	Attempts int
	Dialer   smtpprobe.Dialer
}

// SMTPVerifier asks the domain's exchanges whether they accept a mailbox
type SMTPVerifier struct {
	resolver core.Resolver
	cfg      Config
	logger   *zap.Logger
}

// NewSMTPVerifier creates a new mailbox verifier
func NewSMTPVerifier(resolver core.Resolver, cfg Config, logger *zap.Logger) *SMTPVerifier {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	if cfg.FQDN == "" {
		cfg.FQDN = "localhost.localdomain"
	}
	if cfg.Sender == "" {
		cfg.Sender = "noreply@" + cfg.FQDN
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}

	return &SMTPVerifier{
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Verify checks the address syntax, then tries the exchanges in priority
// order until one accepts (valid) or permanently rejects (invalid) the
// recipient. Other outcomes move on to the next exchange.
func (v *SMTPVerifier) Verify(ctx context.Context, email string) (core.MailboxResult, error) {
	if err := checkmail.ValidateFormat(email); err != nil {
		return core.MailboxResult{Valid: false, Message: "Invalid email format: " + err.Error()}, nil
	}

	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil {
		return core.MailboxResult{}, fmt.Errorf("failed to resolve exchanges for %s: %w", domain, err)
	}
	if len(records) == 0 {
		return core.MailboxResult{Valid: false, Message: "Domain has no MX records"}, nil
	}

	lastErr := ErrInconclusive
	sorted := core.SortByPriority(records)
	for i := 0; i < v.cfg.Attempts; i++ {
		host := sorted[i%len(sorted)].Host

		result, definitive, err := v.verifyHost(ctx, host, email)
		if definitive {
			v.logger.Debug("Mailbox verified",
				zap.String("host", host),
				zap.Bool("valid", result.Valid),
				zap.String("message", result.Message))
			return result, nil
		}

		v.logger.Debug("Mailbox verification attempt inconclusive",
			zap.String("host", host),
			zap.Int("attempt", i+1),
			zap.Error(err))
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrInconclusive, err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	return core.MailboxResult{}, lastErr
}

// verifyHost runs one EHLO/MAIL/RCPT exchange against a single host
func (v *SMTPVerifier) verifyHost(ctx context.Context, host, email string) (core.MailboxResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	host = strings.TrimSuffix(host, ".")
	addr := net.JoinHostPort(host, strconv.Itoa(v.cfg.Port))
	conn, err := v.cfg.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return core.MailboxResult{}, false, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(v.cfg.FQDN); err != nil {
		return core.MailboxResult{}, false, fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(v.cfg.Sender, nil); err != nil {
		return core.MailboxResult{}, false, fmt.Errorf("MAIL FROM failed: %w", err)
	}

	rcptErr := c.Rcpt(email, nil)
	if err := c.Quit(); err != nil {
		v.logger.Debug("QUIT failed", zap.String("host", host), zap.Error(err))
	}

	if rcptErr == nil {
		return core.MailboxResult{Valid: true, Message: "Mailbox accepted", Host: host}, true, nil
	}

	var smtpErr *smtp.SMTPError
	if errors.As(rcptErr, &smtpErr) && smtpErr.Code >= 500 && smtpErr.Code < 600 {
		return core.MailboxResult{Valid: false, Message: smtpErr.Message, Host: host}, true, nil
	}
	return core.MailboxResult{}, false, fmt.Errorf("RCPT TO failed: %w", rcptErr)
}
