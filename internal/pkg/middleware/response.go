package middleware

import (
	"encoding/json"
	"net/http"

	"furnistock/internal/domain"
)

// writeError envia o mesmo corpo de erro usado pelos handlers.
func writeError(w http.ResponseWriter, err error) {
	resp := domain.NewErrorResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}
