package cardapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alovak/cardflow-gateway/cardapi/models"
	"github.com/alovak/cardflow-gateway/spreedly"
	"github.com/alovak/cardflow-gateway/wire"
	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20

// API is a HTTP API for the card service
type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API {
	return &API{
		svc: svc,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/classify", a.classify)
		r.Post("/tokenize", a.tokenize)
	})
	r.Post("/wire/decode", a.decodeWire)
}

func (a *API) classify(w http.ResponseWriter, r *http.Request) {
	req := models.ClassifyRequest{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := a.svc.Classify(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (a *API) tokenize(w http.ResponseWriter, r *http.Request) {
	req := models.TokenizeRequest{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := a.svc.Tokenize(r.Context(), req)
	if err != nil {
		var apiErr *spreedly.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":    apiErr.Message(),
				"status":   apiErr.StatusCode,
				"response": apiErr.Payload,
			})
			return
		}
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) decodeWire(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := a.svc.Decode(body, r.URL.Query().Get("root"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, wire.ErrMalformedWire):
		return http.StatusBadRequest
	case errors.Is(err, wire.ErrMissingRoot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTokenizingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
