package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tablekeep/internal/image/model"
	"tablekeep/internal/image/service"
	"tablekeep/middleware"
	"tablekeep/pkg/apperror"
	"tablekeep/pkg/logger"
	"tablekeep/socket"
)

// Room for multipart framing and other fields on top of the largest accepted
// image.
const formOverhead = 1 << 20

type Publisher interface {
	Publish(msgType, topic, userID string, payload any) error
}

type ImageHandler struct {
	Service *service.ImageService
	Hub     Publisher
}

func NewImageHandler(service *service.ImageService, hub Publisher) *ImageHandler {
	return &ImageHandler{Service: service, Hub: hub}
}

func (h *ImageHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.LoadImageList(r.Context()))
}

func (h *ImageHandler) SaveImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SaveImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SaveImageList(r.Context(), req.Images); err != nil {
		logger.Sugar.Errorf("Handler: Failed to save images: %v", err)
		writeError(w, err, "Failed to save images to database")
		return
	}

	if h.Hub != nil {
		userID, _ := middleware.UserID(r.Context())
		if err := h.Hub.Publish(socket.ImagesUpdatedType, socket.ImagesTopic, userID, map[string]int{"count": len(req.Images)}); err != nil {
			logger.Sugar.Warnf("Failed to publish image list update: %v", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Images saved successfully"))
}

func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+formOverhead)
	file, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	url, err := h.Service.UploadImage(r.Context(), file)
	if err != nil {
		logger.Sugar.Errorf("Handler: Upload failed: %v", err)
		writeError(w, err, "Upload failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.UploadResponse{URL: url})
}

// readUpload returns the "file" part of a multipart request, or nil when
// there is none. At most MaxUploadBytes+1 bytes of the part are kept so an
// oversized file still reaches the service with its declared content type
// and a size over the limit.
func readUpload(r *http.Request) (*model.File, error) {
	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, service.MaxUploadBytes+1))
		if err != nil {
			return nil, err
		}
		return &model.File{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Size:        int64(len(data)),
			Body:        bytes.NewReader(data),
		}, nil
	}
}

// writeError reports client-facing failures verbatim and hides internal ones
// behind fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	http.Error(w, msg, status)
}
