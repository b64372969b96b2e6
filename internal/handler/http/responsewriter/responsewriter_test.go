package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.Zero(t, wrapped.BytesWritten())
	assert.False(t, wrapped.Written())
	assert.Same(t, rec, wrapped.Unwrap())
}

func TestWrap_AlreadyWrapped(t *testing.T) {
	first := Wrap(httptest.NewRecorder())
	assert.Same(t, first, Wrap(first))
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusBadGateway)
	w.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusBadGateway, w.StatusCode())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, w.Written())
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	n, err := w.Write([]byte(`{"ok":true}`))
	require.NoError(t, err)
	_, err = w.Write([]byte("\n"))
	require.NoError(t, err)

	assert.Equal(t, 11, n)
	assert.Equal(t, 12, w.BytesWritten())
	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.Equal(t, "{\"ok\":true}\n", rec.Body.String())
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	Wrap(rec).Flush()
	assert.True(t, rec.Flushed)
}
