package smtpprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionAcceptingConversation(t *testing.T) {
	s := newSession("example.test", "nxabc@example.test")

	assert.Equal(t, "EHLO example.test", s.advance(220))
	assert.Equal(t, "MAIL FROM:<noreply@example.test>", s.advance(250))
	assert.Equal(t, "RCPT TO:<nxabc@example.test>", s.advance(250))
	assert.Equal(t, "QUIT", s.advance(250))
	assert.Equal(t, stateAfterQuit, s.state)
	assert.True(t, s.result())
	assert.False(t, s.done())

	assert.Equal(t, "", s.advance(221))
	assert.True(t, s.done())
	assert.True(t, s.result())
}

func TestSessionRcptClasses(t *testing.T) {
	cases := map[int]bool{
		250: true,
		251: true,
		550: false,
		553: false,
		450: false,
		451: false,
	}

	for code, want := range cases {
		s := newSession("example.test", "nx@example.test")
		s.advance(220)
		s.advance(250)
		s.advance(250)

		assert.Equal(t, "QUIT", s.advance(code))
		assert.Equal(t, want, s.result(), "code %d", code)
	}
}

func TestSessionAborts(t *testing.T) {
	t.Run("banner", func(t *testing.T) {
		s := newSession("example.test", "nx@example.test")
		assert.Equal(t, "QUIT", s.advance(554))
		assert.True(t, s.done())
		assert.False(t, s.result())
	})

	t.Run("ehlo", func(t *testing.T) {
		s := newSession("example.test", "nx@example.test")
		s.advance(220)
		assert.Equal(t, "QUIT", s.advance(502))
		assert.True(t, s.done())
		assert.False(t, s.result())
	})

	t.Run("mail from", func(t *testing.T) {
		s := newSession("example.test", "nx@example.test")
		s.advance(220)
		s.advance(250)
		assert.Equal(t, "QUIT", s.advance(451))
		assert.True(t, s.done())
		assert.False(t, s.result())
	})

	t.Run("non 220 success banner", func(t *testing.T) {
		s := newSession("example.test", "nx@example.test")
		s.advance(250)
		assert.True(t, s.done())
		assert.False(t, s.result())
	})
}

func TestSessionIgnoresRepliesWhenClosed(t *testing.T) {
	s := newSession("example.test", "nx@example.test")
	s.advance(554)

	assert.Equal(t, "", s.advance(220))
	assert.Equal(t, stateClosed, s.state)
}
