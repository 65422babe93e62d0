package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "kiosk/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/articles/article-1/read", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestHandleAppError_QuotaExceededCarriesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	err := HandleAppError(c, domainerrors.NewQuotaExceededError(10, 10, "free"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "QUOTA_EXCEEDED", body.Error.Code)

	details, ok := body.Error.Details.(map[string]any)
	require.True(t, ok, "429 response must carry structured details")
	assert.Equal(t, float64(10), details["limit"])
	assert.Equal(t, float64(10), details["used"])
	assert.Equal(t, "free", details["tier"])
}

func TestHandleAppError_WrappedQuotaExceededCarriesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	wrapped := errors.Wrap(domainerrors.NewQuotaExceededError(50, 50, "plus"), "read rejected")
	require.NoError(t, HandleAppError(c, wrapped))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decodeErrorBody(t, rec)
	details, ok := body.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(50), details["limit"])
	assert.Equal(t, "plus", details["tier"])
}

func TestHandleAppError_InvalidTierCarriesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	err := HandleAppError(c, domainerrors.ErrInvalidTier.WithDetails("unknown tier: platinum"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_TIER", body.Error.Code)
	assert.Equal(t, "unknown tier: platinum", body.Error.Details)
}

func TestHandleAppError_UnauthorizedStripsDetails(t *testing.T) {
	c, rec := newTestContext(t)

	err := HandleAppError(c, domainerrors.ErrInvalidToken.WithDetails("signature mismatch"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_TOKEN", body.Error.Code)
	assert.Nil(t, body.Error.Details)
}
