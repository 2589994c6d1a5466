package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:token:abc", tokenKey("abc"))
	assert.Equal(t, "session:user:42", userKey(42))
}
