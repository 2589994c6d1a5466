package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"footstep/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"not found", apperr.NotFound(ErrPostingNotFound, "posting not found"), http.StatusNotFound, ErrPostingNotFound},
		{"forbidden", apperr.Forbidden(ErrNotPostingOwner, "not owner"), http.StatusForbidden, ErrNotPostingOwner},
		{"conflict", apperr.Conflict(ErrUserExists, "dup"), http.StatusConflict, ErrUserExists},
		{"integrity", apperr.Integrity(ErrPostingIntegrity, "place vanished", nil), http.StatusInternalServerError, ErrPostingIntegrity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrServerInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}

	t.Run("partial failure is a committed business failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		col := apperr.NewCollector("suspend")
		col.Add("postings", 3, errors.New("lock timeout"))
		FromError(c, col.Err())

		assert.Equal(t, http.StatusOK, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, ErrCascadePartial, body.Code)
	})
}
