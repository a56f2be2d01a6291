package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsHexAnd32Chars(t *testing.T) {
	id := New()
	assert.Len(t, id, 32)
	for _, r := range id {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}
}

func TestNewRoomCodeShape(t *testing.T) {
	code, err := NewRoomCode()
	require.NoError(t, err)
	assert.True(t, ValidRoomCode(code))
	assert.Len(t, code, 6)
}

func TestValidRoomCodeRejectsAmbiguousChars(t *testing.T) {
	assert.False(t, ValidRoomCode("ABC0EF"))
	assert.False(t, ValidRoomCode("ABC1EF"))
	assert.False(t, ValidRoomCode("ABCIEF"))
	assert.False(t, ValidRoomCode("ABCOEF"))
	assert.False(t, ValidRoomCode("TOOLONG"))
}

func TestNewRoomCodeIsUsuallyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewRoomCode()
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)
}
