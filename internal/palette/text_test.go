package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "redis", "redis"},
		{"color codes", "\x1b[31mredis\x1b[0m", "redis"},
		{"cursor movement", "\x1b[2Aredis", "redis"},
		{"osc title bel", "\x1b]0;title\x07redis", "redis"},
		{"osc title st", "\x1b]0;title\x1b\\redis", "redis"},
		{"charset escape", "\x1b(Bredis", "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripANSI(tt.in))
		})
	}
}

func TestValidateUTF8(t *testing.T) {
	assert.Equal(t, "redis", ValidateUTF8("redis"))
	assert.Equal(t, "héllo", ValidateUTF8("héllo"))

	got := ValidateUTF8("re\xffdis")
	assert.Equal(t, "re�dis", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("redis", 0))
	assert.Equal(t, "…", Truncate("redis", 1))
	assert.Equal(t, "redis", Truncate("redis", 5))
	assert.Equal(t, "red…", Truncate("redis-replica", 4))

	// CJK counts two columns per character.
	assert.Equal(t, "你…", Truncate("你好世界", 4))
}
