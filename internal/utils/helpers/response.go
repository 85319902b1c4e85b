package helpers

import (
	"encoding/json"
	"net/http"

	"forumtalks/internal/apperr"
)

// Response — единый конверт успешного ответа.
type Response struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: true, Message: "success", Data: data})
}

func Message(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: true, Message: msg})
}

// Error — единственное место, где ошибки воркфлоу превращаются
// в HTTP-статус и конверт {"error":{"kind","message"}}.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{
		Kind:    string(kind),
		Message: apperr.ClientMessage(err),
	}})
}
