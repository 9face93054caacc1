package restapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/pkg/errno"
)

func perform(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(ctx)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccessEnvelope(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Success(c, gin.H{"id": "v1"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errno.OK.Code, body.Code)
	assert.Equal(t, map[string]interface{}{"id": "v1"}, body.Data)
}

func TestFailedMapsBusinessErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{errno.ErrVideoNotFound, http.StatusNotFound, errno.ErrVideoNotFound.Code},
		{errno.Errorf(errno.ErrInvalidState, "video is ready"), http.StatusConflict, errno.ErrInvalidState.Code},
		{errno.ErrEmptyBatch, http.StatusBadRequest, errno.ErrEmptyBatch.Code},
		{errno.NewBizError(errno.ErrAdapter, errors.New("quota exceeded")), http.StatusBadGateway, errno.ErrAdapter.Code},
		{errors.New("db down"), http.StatusInternalServerError, errno.ErrInternalServer.Code},
	}
	for _, tc := range cases {
		w, body := perform(t, func(c *gin.Context) { Failed(c, tc.err) })
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}
}

func TestFailedKeepsClientErrorDetail(t *testing.T) {
	_, body := perform(t, func(c *gin.Context) {
		Failed(c, errno.Errorf(errno.ErrInvalidState, "status=%s", "ready"))
	})
	assert.Equal(t, "Invalid state for this operation: status=ready", body.Message)

	_, body = perform(t, func(c *gin.Context) { Failed(c, errors.New("secret dsn")) })
	assert.Equal(t, errno.ErrInternalServer.Message, body.Message)
}
