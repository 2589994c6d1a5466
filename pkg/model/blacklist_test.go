package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist(t *testing.T) {
	t.Run("empty keeps sentinel", func(t *testing.T) {
		b := NewBlacklist()
		assert.Equal(t, []uint{0}, b.PostingIDs())
		assert.Equal(t, []uint{0}, b.CommentIDs())
		assert.Equal(t, []uint{0}, b.CommentAuthorIDs())

		var nilList *Blacklist
		assert.Equal(t, []uint{0}, nilList.PostingIDs())
		assert.False(t, nilList.HasPosting(1))
	})

	t.Run("set semantics", func(t *testing.T) {
		b := NewBlacklist()
		b.Add(TargetPosting, 5, 2)
		b.Add(TargetPosting, 5, 2)
		b.Add(TargetComment, 5, 3)

		assert.Equal(t, 2, b.Len())
		assert.Equal(t, []uint{0, 5}, b.PostingIDs())
		assert.Equal(t, []uint{0, 5}, b.CommentIDs())
		assert.True(t, b.HasPosting(5))
		assert.True(t, b.HasComment(5))
		assert.True(t, b.HidesAuthor(3))
		assert.False(t, b.HidesAuthor(2))
	})

	t.Run("kinds do not collide", func(t *testing.T) {
		b := NewBlacklist()
		b.Add(TargetComment, 9, 4)
		assert.False(t, b.HasPosting(9))
	})

	t.Run("survives cache round trip", func(t *testing.T) {
		b := NewBlacklist()
		b.Add(TargetPosting, 7, 1)

		data, err := json.Marshal(b)
		require.NoError(t, err)
		got := NewBlacklist()
		require.NoError(t, json.Unmarshal(data, got))
		assert.True(t, got.HasPosting(7))
	})
}
