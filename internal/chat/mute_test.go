package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMuteLevelAllowAll(t *testing.T) {
	m := AllowAll()
	assert.True(t, m.publicAllowed())
	assert.True(t, m.privateAllowed())
}

func TestMuteLevelDenyPublicOnly(t *testing.T) {
	m := DenyPublicOnly("hush")
	assert.False(t, m.publicAllowed())
	assert.True(t, m.privateAllowed())
	assert.Equal(t, "hush", m.reasonText())
}

func TestMuteLevelDenyAll(t *testing.T) {
	m := DenyAll("silence")
	assert.False(t, m.publicAllowed())
	assert.False(t, m.privateAllowed())
	assert.Equal(t, "silence", m.reasonText())
}
