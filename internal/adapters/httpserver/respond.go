package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/headstock/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *domain.InputError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ie.Msg})
	case errors.Is(err, domain.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.BadRequestf("invalid JSON body: %v", err)
	}
	return s.check(dst)
}

func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return domain.BadRequestf("%s", strings.Join(msgs, "; "))
	}
	return domain.BadRequestf("%v", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be >= " + fe.Param()
	case "lte":
		return fe.Field() + " must be <= " + fe.Param()
	case "uuid":
		return fe.Field() + " must be a UUID"
	case "max":
		return fe.Field() + " is too long"
	}
	return fe.Field() + " is invalid"
}

// pathID parses the {id} URL parameter, falling back to fallback when the
// route has none.
func pathID(r *http.Request, fallback string) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = fallback
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.BadRequestf("id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.BadRequestf("invalid id %q", raw)
	}
	return id, nil
}
