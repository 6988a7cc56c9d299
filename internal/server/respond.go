package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tdzio/tdz/internal/model"
)

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	s.respondJSON(w, statusFor(kind), errorBody{Error: err.Error(), Code: kind.String()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: model.KindValidation.String()})
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindUnavailable:
		return http.StatusServiceUnavailable
	case model.KindCancelled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
