package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prodkart/backend/internal/store"
	"github.com/prodkart/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubmission(t *testing.T, st store.SubmissionStore, userName, userEmail string) {
	t.Helper()
	sub := &models.Submission{
		UserName:    userName,
		UserEmail:   userEmail,
		Ingredients: "flour, sugar",
		Size:        "500g",
		Cost:        "12.50",
		Server:      "eu-west",
		Description: "seeded",
		Image1URL:   "https://cdn.test/products/prodImg1/object",
	}
	require.NoError(t, st.Create(context.Background(), sub))
}

func getDataJSONRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/get/v1/getdata", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetDataMissingFields(t *testing.T) {
	h := NewQueryHandler(newTestStore(t), testSecret)

	rec := httptest.NewRecorder()
	h.GetData(rec, getDataJSONRequest(t, map[string]string{"userName": "alice", "apiKey": testSecret}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestGetDataInvalidKey(t *testing.T) {
	h := NewQueryHandler(newTestStore(t), testSecret)

	rec := httptest.NewRecorder()
	h.GetData(rec, getDataJSONRequest(t, map[string]string{
		"userName": "alice", "userEmail": "a@x.com", "apiKey": "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDataNotFound(t *testing.T) {
	h := NewQueryHandler(newTestStore(t), testSecret)

	rec := httptest.NewRecorder()
	h.GetData(rec, getDataJSONRequest(t, map[string]string{
		"userName": "alice", "userEmail": "a@x.com", "apiKey": testSecret,
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No data found", decodeResponse(t, rec).Message)
}

func TestGetDataReturnsAllMatches(t *testing.T) {
	st := newTestStore(t)
	seedSubmission(t, st, "alice", "a@x.com")
	seedSubmission(t, st, "alice", "a@x.com")
	seedSubmission(t, st, "bob", "b@x.com")
	h := NewQueryHandler(st, testSecret)

	body := map[string]string{"userName": "alice", "userEmail": "a@x.com", "apiKey": testSecret}
	rec := httptest.NewRecorder()
	h.GetData(rec, getDataJSONRequest(t, body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string              `json:"message"`
		Success bool                `json:"success"`
		Data    []models.Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	for _, sub := range resp.Data {
		assert.Equal(t, "alice", sub.UserName)
		assert.Equal(t, "a@x.com", sub.UserEmail)
	}

	// Reads are idempotent.
	again := httptest.NewRecorder()
	h.GetData(again, getDataJSONRequest(t, body))
	assert.Equal(t, http.StatusOK, again.Code)
	assert.JSONEq(t, rec.Body.String(), again.Body.String())
}

func TestGetDataFormEncoded(t *testing.T) {
	st := newTestStore(t)
	seedSubmission(t, st, "alice", "a@x.com")
	h := NewQueryHandler(st, testSecret)

	form := url.Values{}
	form.Set("userName", "alice")
	form.Set("userEmail", "a@x.com")
	form.Set("apiKey", testSecret)
	req := httptest.NewRequest(http.MethodPost, "/api/get/v1/getdata", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.GetData(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDataInvalidJSON(t *testing.T) {
	h := NewQueryHandler(newTestStore(t), testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/get/v1/getdata", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.GetData(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var msg string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "Server is up and running", msg)
}
