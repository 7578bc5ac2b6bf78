package smtpprobe

import "fmt"

// state is the position of a probe conversation
type state int

const (
	stateAwaitBanner state = iota
	stateAfterEHLO
	stateAfterMailFrom
	stateAfterRcptTo
	stateAfterQuit
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateAwaitBanner:
		return "await-banner"
	case stateAfterEHLO:
		return "after-ehlo"
	case stateAfterMailFrom:
		return "after-mail-from"
	case stateAfterRcptTo:
		return "after-rcpt-to"
	case stateAfterQuit:
		return "after-quit"
	default:
		return "closed"
	}
}

// session drives one catch-all conversation. It is fed complete replies
// and answers with the next command to send; it never touches the network.
type session struct {
	domain    string
	recipient string
	state     state
	catchAll  bool
	aborted   bool
}

func newSession(domain, recipient string) *session {
	return &session{
		domain:    domain,
		recipient: recipient,
		state:     stateAwaitBanner,
	}
}

// advance consumes the status code of a complete reply and returns the
// command to send next. An empty command means the conversation is over.
func (s *session) advance(code int) string {
	class := code / 100

	switch s.state {
	case stateAwaitBanner:
		if code != 220 {
			return s.abort()
		}
		s.state = stateAfterEHLO
		return "EHLO " + s.domain

	case stateAfterEHLO:
		if class != 2 {
			return s.abort()
		}
		s.state = stateAfterMailFrom
		return fmt.Sprintf("MAIL FROM:<noreply@%s>", s.domain)

	case stateAfterMailFrom:
		if class != 2 {
			return s.abort()
		}
		s.state = stateAfterRcptTo
		return fmt.Sprintf("RCPT TO:<%s>", s.recipient)

	case stateAfterRcptTo:
		switch class {
		case 2:
			s.catchAll = true
		case 5:
			s.catchAll = false
		}
		s.state = stateAfterQuit
		return "QUIT"

	case stateAfterQuit:
		s.state = stateClosed
		return ""

	default:
		return ""
	}
}

// abort ends the conversation with a negative result. QUIT is still sent
// but its reply is not awaited.
func (s *session) abort() string {
	s.aborted = true
	s.catchAll = false
	s.state = stateClosed
	return "QUIT"
}

// done reports whether no further reply is expected
func (s *session) done() bool {
	return s.state == stateClosed
}

// result is the catch-all verdict of the conversation so far
func (s *session) result() bool {
	return s.catchAll && !s.aborted
}
