package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEquivalentFormats(t *testing.T) {
	formats := []string{
		"9876543210",
		"+91 98765 43210",
		"919876543210",
		"09876543210",
		"+91-98765-43210",
		" (98765) 43210 ",
		"whatsapp:+919876543210",
		"0091 9876543210",
	}
	for _, f := range formats {
		assert.Equal(t, "9876543210", Normalize(f), f)
	}
}

func TestNormalizeShortNumbers(t *testing.T) {
	assert.Equal(t, "12345", Normalize("012345"))
	assert.False(t, Valid(Normalize("012345")))
	assert.Equal(t, "", Normalize(""))
}

func TestWhatsApp(t *testing.T) {
	assert.Equal(t, "whatsapp:+919876543210", WhatsApp("9876543210"))
}
