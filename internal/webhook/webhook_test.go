package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/pkg/encrypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef"

func TestValidateArgs(t *testing.T) {
	schema := model.ParameterSchema{
		Query:  map[string]model.TypeTag{"city": model.TypeString, "days": model.TypeNumber},
		Header: map[string]model.TypeTag{"x-units": model.TypeString},
	}

	t.Run("valid", func(t *testing.T) {
		err := ValidateArgs(schema, map[string]interface{}{
			"city": "sf", "days": 3.0, "x-units": "metric",
		})
		assert.NoError(t, err)
	})

	t.Run("missing parameters reported sorted", func(t *testing.T) {
		err := ValidateArgs(schema, map[string]interface{}{"days": 3.0})
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, apperr.CodeValidation, ae.Code)
		assert.Equal(t, "Missing required parameters", ae.Message)
		assert.Equal(t, []string{"city", "x-units"}, ae.Details)
	})

	t.Run("missing wins over mismatch", func(t *testing.T) {
		err := ValidateArgs(schema, map[string]interface{}{"city": 42.0, "days": 3.0})
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, "Missing required parameters", ae.Message)
		assert.Equal(t, []string{"x-units"}, ae.Details)
	})

	t.Run("type mismatch lists expectations", func(t *testing.T) {
		err := ValidateArgs(schema, map[string]interface{}{
			"city": 42.0, "days": "three", "x-units": "metric",
		})
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, "Parameter type mismatch", ae.Message)
		assert.Equal(t, []string{"city: expected string", "days: expected number"}, ae.Details)
	})

	t.Run("empty schema accepts anything", func(t *testing.T) {
		assert.NoError(t, ValidateArgs(model.ParameterSchema{}, map[string]interface{}{"extra": 1.0}))
	})
}

func TestInvokeDistributesArgs(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"temp":"72F"}`))
	}))
	t.Cleanup(srv.Close)

	sealed, err := encrypt.Seal(testAESKey, "s3cret")
	require.NoError(t, err)

	fn := &model.Function{
		Name:     "weather",
		Endpoint: srv.URL + "/weather",
		Method:   http.MethodGet,
		Parameters: model.ParameterSchema{
			Query:  map[string]model.TypeTag{"city": model.TypeString, "days": model.TypeNumber, "detailed": model.TypeBoolean},
			Header: map[string]model.TypeTag{"X-Units": model.TypeString},
		},
		AuthType:   "bearer",
		AuthSecret: sealed,
	}

	client := NewClient(5*time.Second, testAESKey)
	status, body, err := client.Invoke(context.Background(), fn, map[string]interface{}{
		"city": "sf", "days": 3.0, "detailed": true, "X-Units": "metric",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"temp":"72F"}`, body)

	q := got.URL.Query()
	assert.Equal(t, "sf", q.Get("city"))
	assert.Equal(t, "3", q.Get("days"))
	assert.Equal(t, "true", q.Get("detailed"))
	assert.Equal(t, "metric", got.Header.Get("X-Units"))
	assert.Equal(t, "Bearer s3cret", got.Header.Get("Authorization"))
}

func TestInvokeNoAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	fn := &model.Function{
		Name:     "ping",
		Endpoint: srv.URL,
		Method:   http.MethodGet,
		AuthType: "none",
	}

	client := NewClient(5*time.Second, testAESKey)
	status, _, err := client.Invoke(context.Background(), fn, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestInvokeReturnsUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	fn := &model.Function{Name: "gone", Endpoint: srv.URL, Method: http.MethodGet}
	client := NewClient(5*time.Second, testAESKey)

	status, _, err := client.Invoke(context.Background(), fn, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInvokeUnreachableEndpoint(t *testing.T) {
	fn := &model.Function{Name: "dead", Endpoint: "http://127.0.0.1:1", Method: http.MethodGet}
	client := NewClient(time.Second, testAESKey)

	_, _, err := client.Invoke(context.Background(), fn, nil)
	assert.Error(t, err)
}
