package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/microservices/proof/service"
)

type ProofHandler struct {
	service   service.ProofServiceInterface
	maxUpload int64
}

func NewProofHandler(svc service.ProofServiceInterface, maxUpload int64) *ProofHandler {
	return &ProofHandler{service: svc, maxUpload: maxUpload}
}

// Upload принимает multipart-форму: order_code, chat_id и файл video.
func (h *ProofHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	orderCode := r.FormValue("order_code")
	if orderCode == "" {
		writeProblem(w, http.StatusBadRequest, "invalid_form", "order_code is required")
		return
	}
	chatID, err := strconv.ParseInt(r.FormValue("chat_id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_form", "chat_id must be an integer")
		return
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_form", "video file is required")
		return
	}
	defer file.Close()

	res, err := h.service.Upload(r.Context(), service.UploadInput{
		OrderCode:   orderCode,
		ChatID:      chatID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		File:        file,
	})
	switch {
	case errors.Is(err, domain.ErrMalformedEvent):
		writeProblem(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	case errors.Is(err, domain.ErrUnknownIdentity):
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
		return
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	if !res.Granted {
		writeJSON(w, http.StatusOK, map[string]any{
			"order_code": orderCode, "granted": false,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order_code": orderCode, "file_name": res.StoredName, "granted": true,
	})
}

// writeJSON — отдаёт JSON с нужным статусом
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem — единый формат ошибок (упрощённый Problem+JSON)
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}
