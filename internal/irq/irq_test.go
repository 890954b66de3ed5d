package irq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingRequiresIMEAndEnable(t *testing.T) {
	c := New()
	c.Request(VBlank)
	assert.False(t, c.Pending(), "IME off, should not be pending")

	c.WriteIME(true)
	assert.False(t, c.Pending(), "IE not set, should not be pending")

	c.WriteIE(uint16(VBlank))
	assert.True(t, c.Pending())
}

func TestAcknowledgeClearsOnlyRequestedBits(t *testing.T) {
	c := New()
	c.Request(VBlank)
	c.Request(HBlank)
	c.Acknowledge(uint16(VBlank))

	assert.Equal(t, uint16(HBlank), c.ReadIF())
}

func TestWriteIFAcknowledges(t *testing.T) {
	c := New()
	c.Request(VBlank)
	c.Request(Timer0)
	c.WriteIF(uint16(VBlank))

	assert.Equal(t, uint16(Timer0), c.ReadIF())
}
