package handler

import (
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type endpointPayload struct {
	Title  *string                `json:"title"`
	Campos []domain.EndpointField `json:"campos"`
}

func listEndpointsHandler(svc *service.RegistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eps, err := svc.List(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, eps)
	}
}

func createEndpointHandler(svc *service.RegistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req endpointPayload
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.Title == nil || req.Campos == nil {
			writeError(w, http.StatusBadRequest, "Title e campos são obrigatórios")
			return
		}

		token := SessionTokenFromContext(r.Context())
		ep, err := svc.Create(r.Context(), token, *req.Title, req.Campos)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, ep)
	}
}

func getEndpointHandler(svc *service.RegistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "endpointId")
		token := SessionTokenFromContext(r.Context())

		ep, err := svc.Get(r.Context(), token, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, ep)
	}
}

func updateEndpointHandler(svc *service.RegistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "endpointId")

		var req endpointPayload
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		token := SessionTokenFromContext(r.Context())
		ep, err := svc.Update(r.Context(), token, id, req.Title, req.Campos)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, ep)
	}
}

func deleteEndpointHandler(svc *service.RegistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "endpointId")
		token := SessionTokenFromContext(r.Context())

		if err := svc.Delete(r.Context(), token, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: nil})
	}
}
