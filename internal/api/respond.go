package api

import (
	"encoding/json"
	"net/http"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorObj("encode response failed", "http_response", map[string]any{
			"status": code,
			"error":  err.Error(),
		})
	}
}

func writeDetail(w http.ResponseWriter, log logger.Logger, code int, detail string) {
	writeJSON(w, log, code, errorBody{Detail: detail})
}
