package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBindAndValidate(t *testing.T) {
	t.Run("malformed JSON is 400", func(t *testing.T) {
		c, rec := newContext("POST", "/", `{"product":`)
		var req dto.AddItemRequest
		assert.False(t, bindAndValidate(c, &req))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["detail"], "JSON inválido")
	})

	t.Run("failed tags are 422 with fields", func(t *testing.T) {
		c, rec := newContext("POST", "/", `{"product":"","quantity":-1}`)
		var req dto.AddItemRequest
		assert.False(t, bindAndValidate(c, &req))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		fields := decodeBody(t, rec)["fields"].(map[string]any)
		assert.Equal(t, "required", fields["Product"])
		assert.Equal(t, "min", fields["Quantity"])
	})

	t.Run("decimal min tag", func(t *testing.T) {
		c, rec := newContext("POST", "/", `{"payment_method":"pix","discount":"-1"}`)
		var req dto.CheckoutRequest
		assert.False(t, bindAndValidate(c, &req))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("split is not a single payment method", func(t *testing.T) {
		c, rec := newContext("POST", "/", `{"payment_method":"dividido"}`)
		var req dto.CheckoutRequest
		assert.False(t, bindAndValidate(c, &req))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("valid", func(t *testing.T) {
		c, _ := newContext("POST", "/", `{"product":"001","quantity":2}`)
		var req dto.AddItemRequest
		require.True(t, bindAndValidate(c, &req))
		assert.Equal(t, "001", req.Product)
		assert.Equal(t, 2, req.Quantity)
	})
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
		detail string
	}{
		{"precondition", apierror.Precondition("Nenhum turno aberto"), http.StatusConflict, "precondition", "Nenhum turno aberto"},
		{"validation", apierror.Validation("Quantidade inválida"), http.StatusUnprocessableEntity, "validation", "Quantidade inválida"},
		{"conflict", apierror.Conflict("Código já cadastrado"), http.StatusConflict, "conflict", "Código já cadastrado"},
		{"not found", apierror.NotFound("Venda não encontrada"), http.StatusNotFound, "not_found", "Venda não encontrada"},
		{"internal is masked", errors.New("disk full"), http.StatusInternalServerError, "", "Erro interno do servidor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("GET", "/", "")
			respondError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.detail, body["detail"])
			if tt.kind != "" {
				assert.Equal(t, tt.kind, body["kind"])
				assert.Empty(t, c.Errors)
			} else {
				assert.NotContains(t, rec.Body.String(), "disk full")
				assert.Len(t, c.Errors, 1)
			}
		})
	}
}

func TestParams(t *testing.T) {
	c, rec := newContext("GET", "/", "")
	c.Params = gin.Params{{Key: "id", Value: "mesa"}}
	_, ok := surfaceParam(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, _ = newContext("GET", "/", "")
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	id, ok := surfaceParam(c)
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	c, rec = newContext("GET", "/", "")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok = uuidParam(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseSaleFilter(t *testing.T) {
	c, _ := newContext("GET", "/v1/sales?shift_id=6f1c3c2e-9a2b-4c1e-8f7a-2b3c4d5e6f70&payment_method=pix&table=3&period=week&from=2024-03-01T00:00:00Z&to=2024-03-31T00:00:00Z", "")
	f, err := parseSaleFilter(c)
	require.NoError(t, err)
	require.NotNil(t, f.ShiftID)
	assert.Equal(t, "6f1c3c2e-9a2b-4c1e-8f7a-2b3c4d5e6f70", f.ShiftID.String())
	assert.Equal(t, "pix", f.PaymentMethod)
	require.NotNil(t, f.TableNumber)
	assert.Equal(t, 3, *f.TableNumber)
	assert.Equal(t, "week", f.Period)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.From.Before(*f.To))
	assert.Nil(t, f.UserID)

	for _, q := range []string{"shift_id=x", "user_id=x", "table=um", "from=ontem"} {
		c, _ := newContext("GET", "/v1/sales?"+q, "")
		_, err := parseSaleFilter(c)
		assert.Error(t, err, q)
	}
}

func TestHealth(t *testing.T) {
	db, err := infra.NewDatabase("sqlite://:memory:")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", Health(db, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig())))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	store := body["snapshot_store"].(map[string]any)
	assert.Equal(t, "closed", store["state"])
	assert.Equal(t, float64(0), store["rejected_writes"])
	assert.NotContains(t, store, "last_error")
}

func TestHealth_DatabaseDown(t *testing.T) {
	db, err := infra.NewDatabase("sqlite://:memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	r := gin.New()
	r.GET("/health", Health(db, nil, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["db"])
}
