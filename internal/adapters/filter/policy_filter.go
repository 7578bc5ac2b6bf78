package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/ports"
	"go.uber.org/zap"
)

const maxPolicyLine = 4096

// PolicyFilter implements a Postfix SMTP access policy delegation server.
// It scores the envelope sender of each request and rejects disposable ones.
type PolicyFilter struct {
	assessor      ports.Assessor
	logger        *zap.Logger
	listenAddr    string
	rejectMessage string
	scoreHeader   string
	timeout       time.Duration

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewPolicyFilter creates a new Postfix policy server. scoreHeader, when
// set, is prepended to accepted mail with the sender's score.
func NewPolicyFilter(
	assessor ports.Assessor,
	logger *zap.Logger,
	listenAddr string,
	rejectMessage string,
	scoreHeader string,
	timeout time.Duration,
) *PolicyFilter {
	if rejectMessage == "" {
		rejectMessage = "Disposable email addresses are not accepted"
	}

	return &PolicyFilter{
		assessor:      assessor,
		logger:        logger,
		listenAddr:    listenAddr,
		rejectMessage: rejectMessage,
		scoreHeader:   scoreHeader,
		timeout:       timeout,
		conns:         make(map[net.Conn]struct{}),
	}
}

// Start starts accepting policy connections
func (f *PolicyFilter) Start() error {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.listenAddr, err)
	}

	f.mu.Lock()
	f.listener = ln
	f.mu.Unlock()

	f.logger.Info("Postfix policy server starting", zap.String("address", ln.Addr().String()))

	f.wg.Add(1)
	go f.serve(ln)

	return nil
}

// Addr returns the listening address, or nil before Start
func (f *PolicyFilter) Addr() net.Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Stop closes the listener and all open connections
func (f *PolicyFilter) Stop() error {
	f.mu.Lock()
	ln := f.listener
	f.listener = nil
	for conn := range f.conns {
		conn.Close()
	}
	f.mu.Unlock()

	if ln == nil {
		return nil
	}
	err := ln.Close()
	f.wg.Wait()
	return err
}

func (f *PolicyFilter) serve(ln net.Listener) {
	defer f.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				f.logger.Error("Policy server accept error", zap.Error(err))
			}
			return
		}

		f.mu.Lock()
		f.conns[conn] = struct{}{}
		f.mu.Unlock()

		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.handleConn(conn)

			f.mu.Lock()
			delete(f.conns, conn)
			f.mu.Unlock()
		}()
	}
}

// handleConn answers requests until the client disconnects. Postfix keeps
// the connection open across requests.
func (f *PolicyFilter) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), maxPolicyLine)
	w := bufio.NewWriter(conn)

	attrs := make(map[string]string)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			if name, value, ok := strings.Cut(line, "="); ok {
				attrs[name] = value
			}
			continue
		}

		action := f.Evaluate(attrs)
		if _, err := fmt.Fprintf(w, "action=%s\n\n", action); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
		attrs = make(map[string]string)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		f.logger.Debug("Policy connection error", zap.Error(err))
	}
}

// Evaluate decides the action for one policy request
func (f *PolicyFilter) Evaluate(attrs map[string]string) string {
	sender := attrs["sender"]
	if sender == "" {
		// Null sender: bounces and notifications
		return "DUNNO"
	}

	ctx := context.Background()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	result := f.assessor.Assess(ctx, sender, core.AssessOptions{})

	f.logger.Info("Processed policy request",
		zap.String("sender", sender),
		zap.String("client_address", attrs["client_address"]),
		zap.String("queue_id", attrs["queue_id"]),
		zap.Float64("score", result.Score),
		zap.Bool("is_dea", result.IsDEA))

	if result.IsDEA {
		return "REJECT " + f.rejectMessage
	}
	if f.scoreHeader != "" {
		return fmt.Sprintf("PREPEND %s: %.4f", f.scoreHeader, result.Score)
	}
	return "DUNNO"
}
