package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetContains(t *testing.T) {
	s := NewSet([]string{" Gmail.com ", "proton.me.", ""}, zap.NewNop())

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("gmail.com"))
	assert.True(t, s.Contains("GMAIL.COM"))
	assert.True(t, s.Contains("proton.me"))
	assert.False(t, s.Contains("mailinator.com"))
}

func TestDefaultMajorProviders(t *testing.T) {
	s := NewSet(DefaultMajorProviders, nil)

	for _, d := range []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com", "aol.com", "icloud.com", "zoho.com"} {
		assert.True(t, s.Contains(d), d)
	}
	assert.Equal(t, 7, s.Len())
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.False(t, s.Contains("gmail.com"))
	assert.Zero(t, s.Len())
}
