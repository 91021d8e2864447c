package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edutrack/institute/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ann.lee@x.com", sanitizer.NormalizeEmail("  Ann.Lee@X.COM\n"))
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "+919876543210", sanitizer.NormalizePhone(" +91 98765-43210 "))
	assert.Equal(t, "0123", sanitizer.NormalizePhone("01+23"))
}

func TestSingleLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Ann Lee", sanitizer.SingleLine(" Ann \n\t Lee "))
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"annabel@x.com": "a*****l@x.com",
		"ab@x.com":      "a*@x.com",
		"a@x.com":       "*@x.com",
		"nope":          "****",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizer.MaskEmail(in), in)
	}
}
