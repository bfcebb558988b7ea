package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balikin/internal/adapter/api"
	"balikin/internal/adapter/repository"
	"balikin/internal/infrastructure/auth"
)

func issueDevToken(t *testing.T, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	e.Validator = api.NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/_dev/token", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	h := NewDevTokenHandler(
		auth.NewDevVerifier("test-secret", time.Hour),
		repository.NewMemoryUserRepository(),
	)
	return rec, h.GenerateToken(e.NewContext(req, rec))
}

func TestGenerateTokenDerivesUsernameFromShortUserID(t *testing.T) {
	rec, err := issueDevToken(t, `{"user_id":"u7"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u7", body.Data["user_id"])
	assert.NotEmpty(t, body.Data["token"])
}

func TestGenerateTokenWithoutUserIDAssignsOne(t *testing.T) {
	rec, err := issueDevToken(t, `{}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data["user_id"])
	assert.NotEmpty(t, body.Data["token"])
}
