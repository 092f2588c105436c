package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prodkart/backend/internal/auth"
	"github.com/prodkart/backend/internal/store"
	log "github.com/sirupsen/logrus"
)

type QueryHandler struct {
	store  store.SubmissionStore
	secret string
}

func NewQueryHandler(st store.SubmissionStore, secret string) *QueryHandler {
	return &QueryHandler{store: st, secret: secret}
}

type getDataRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	APIKey    string `json:"apiKey"`
}

// GetData handles POST /api/get/v1/getdata: exact-match lookup of all
// submissions for a (userName, userEmail) pair.
func (h *QueryHandler) GetData(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGetData(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body", false)
		return
	}

	if req.UserName == "" || req.UserEmail == "" || req.APIKey == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required", false)
		return
	}
	if !auth.SecretEqual(req.APIKey, h.secret) {
		writeMessage(w, http.StatusUnauthorized, "Invalid API key", false)
		return
	}

	subs, err := h.store.FindByUser(r.Context(), req.UserName, req.UserEmail)
	if err != nil {
		log.WithError(err).Error("Failed to fetch submissions")
		writeMessage(w, http.StatusInternalServerError, "Error in getting data", false)
		return
	}
	if len(subs) == 0 {
		writeMessage(w, http.StatusNotFound, "No data found", false)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Message: "Data fetched successfully",
		Success: true,
		Data:    subs,
	})
}

// decodeGetData accepts either a JSON body or form-encoded fields.
func decodeGetData(r *http.Request) (getDataRequest, error) {
	var req getDataRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}
	req.UserName = r.FormValue("userName")
	req.UserEmail = r.FormValue("userEmail")
	req.APIKey = r.FormValue("apiKey")
	return req, nil
}
