package handler

import (
	"encoding/json"
	"net/http"

	"tablekeep/internal/table/model"
	"tablekeep/internal/table/service"
	"tablekeep/middleware"
	"tablekeep/pkg/apperror"
	"tablekeep/pkg/logger"
	"tablekeep/socket"
)

// Publisher receives change notifications after successful writes.
type Publisher interface {
	Publish(msgType, topic, userID string, payload any) error
}

type TableHandler struct {
	Service *service.TableService
	Hub     Publisher
}

func NewTableHandler(service *service.TableService, hub Publisher) *TableHandler {
	return &TableHandler{Service: service, Hub: hub}
}

func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	table, found, err := h.Service.LoadTable(r.Context(), docID)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to load table %s: %v", docID, err)
		http.Error(w, "Failed to load table", apperror.HTTPStatus(err))
		return
	}
	if !found {
		http.Error(w, "Table not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(table)
}

func (h *TableHandler) SaveTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SaveTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updatedAt, err := h.Service.PersistTable(r.Context(), req.DocID, req.HeaderRow, req.Rows)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save table %s: %v", req.DocID, err)
		status := apperror.HTTPStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Failed to save table"
		}
		http.Error(w, msg, status)
		return
	}

	resp := model.SaveTableResponse{DocID: req.DocID, UpdatedAt: updatedAt}
	if h.Hub != nil {
		userID, _ := middleware.UserID(r.Context())
		if err := h.Hub.Publish(socket.TableUpdatedType, socket.TableTopic(req.DocID), userID, resp); err != nil {
			logger.Sugar.Warnf("Failed to publish update for table %s: %v", req.DocID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
