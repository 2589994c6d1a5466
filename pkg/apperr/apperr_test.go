package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsByKind(t *testing.T) {
	err := NotFound(30031, "posting not found")
	wrapped := fmt.Errorf("view posting: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestCollector(t *testing.T) {
	t.Run("no failures yields nil", func(t *testing.T) {
		c := NewCollector("suspend")
		c.Add("postings", 1, nil)
		assert.NoError(t, c.Err())
	})

	t.Run("failures are summarized", func(t *testing.T) {
		dbErr := errors.New("deadlock")
		c := NewCollector("suspend")
		c.Add("postings", 7, dbErr)
		c.Add("likes", 9, errors.New("gone"))

		err := c.Err()
		var pf *PartialFailure
		assert.True(t, errors.As(err, &pf))
		assert.Len(t, pf.Items, 2)
		assert.Equal(t, KindPartialFailure, KindOf(err))
		assert.True(t, errors.Is(err, dbErr))
		assert.Contains(t, err.Error(), "postings#7")
	})
}
