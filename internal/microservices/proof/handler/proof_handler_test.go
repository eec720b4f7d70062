package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/microservices/proof/service"
)

type stubProofService struct {
	result service.UploadResult
	err    error

	got service.UploadInput
}

func (s *stubProofService) Upload(_ context.Context, in service.UploadInput) (service.UploadResult, error) {
	s.got = in
	return s.result, s.err
}

func multipartRequest(t *testing.T, orderCode, chatID, fileName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if orderCode != "" {
		require.NoError(t, w.WriteField("order_code", orderCode))
	}
	if chatID != "" {
		require.NoError(t, w.WriteField("chat_id", chatID))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("video", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, "videodata")
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/delivery-proofs", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProofUploadCreated(t *testing.T) {
	svc := &stubProofService{result: service.UploadResult{StoredName: "abc.mp4", Granted: true}}
	h := NewProofHandler(svc, 1<<20)

	resp := httptest.NewRecorder()
	h.Upload(resp, multipartRequest(t, "ORD-1", "100", "proof.mp4"))

	require.Equal(t, http.StatusCreated, resp.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "abc.mp4", body["file_name"])
	require.Equal(t, true, body["granted"])

	require.Equal(t, "ORD-1", svc.got.OrderCode)
	require.Equal(t, int64(100), svc.got.ChatID)
	require.Equal(t, "proof.mp4", svc.got.FileName)
}

func TestProofUploadDuplicateOK(t *testing.T) {
	svc := &stubProofService{result: service.UploadResult{Granted: false}}
	h := NewProofHandler(svc, 1<<20)

	resp := httptest.NewRecorder()
	h.Upload(resp, multipartRequest(t, "ORD-1", "100", "proof.mp4"))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestProofUploadMissingFields(t *testing.T) {
	h := NewProofHandler(&stubProofService{}, 1<<20)

	resp := httptest.NewRecorder()
	h.Upload(resp, multipartRequest(t, "", "100", "proof.mp4"))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	h.Upload(resp, multipartRequest(t, "ORD-1", "abc", "proof.mp4"))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	h.Upload(resp, multipartRequest(t, "ORD-1", "100", ""))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProofUploadErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad ext", domain.ErrMalformedEvent), http.StatusBadRequest},
		{fmt.Errorf("%w: no order", domain.ErrUnknownIdentity), http.StatusNotFound},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewProofHandler(&stubProofService{err: tc.err}, 1<<20)
		resp := httptest.NewRecorder()
		h.Upload(resp, multipartRequest(t, "ORD-1", "100", "proof.mp4"))
		require.Equal(t, tc.code, resp.Code, "err=%v", tc.err)
	}
}
