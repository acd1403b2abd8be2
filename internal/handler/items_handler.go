package handler

import (
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// extractValues pulls the item payload out of a request body that may
// arrive as {"values": {...}}, {"data": {...}} or the bare object.
func extractValues(body map[string]any) map[string]any {
	if values, ok := body["values"].(map[string]any); ok {
		return values
	}
	if data, ok := body["data"].(map[string]any); ok {
		return data
	}
	return body
}

func listItemsHandler(svc *service.ItemsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		token := SessionTokenFromContext(r.Context())

		items, err := svc.List(r.Context(), token, endpointID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, items)
	}
}

func createItemHandler(svc *service.ItemsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")

		var body map[string]any
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		token := SessionTokenFromContext(r.Context())
		item, err := svc.Create(r.Context(), token, endpointID, extractValues(body))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, item)
	}
}

func getItemHandler(svc *service.ItemsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		itemID := chi.URLParam(r, "itemId")

		item, err := svc.Get(r.Context(), endpointID, itemID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, item)
	}
}

func updateItemHandler(svc *service.ItemsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		itemID := chi.URLParam(r, "itemId")

		var body map[string]any
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		token := SessionTokenFromContext(r.Context())
		item, err := svc.Update(r.Context(), token, endpointID, itemID, extractValues(body))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, item)
	}
}

func deleteItemHandler(svc *service.ItemsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		itemID := chi.URLParam(r, "itemId")
		token := SessionTokenFromContext(r.Context())

		if err := svc.Delete(r.Context(), token, endpointID, itemID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: nil})
	}
}

// newItemFormHandler serves the create-mode working set: every schema
// field present with an empty value, in schema order.
func newItemFormHandler(svc *service.FormService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		token := SessionTokenFromContext(r.Context())

		view, err := svc.NewItemForm(r.Context(), token, endpointID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, view)
	}
}

// editItemFormHandler serves the edit-mode working set: the stored item
// reconciled against the endpoint's current schema.
func editItemFormHandler(svc *service.FormService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID := chi.URLParam(r, "endpointId")
		itemID := chi.URLParam(r, "itemId")
		token := SessionTokenFromContext(r.Context())

		view, err := svc.LoadEditForm(r.Context(), token, endpointID, itemID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, view)
	}
}
