package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alexkachalkov/scootrate/services"
)

const maxRequestBody = 1 << 20 // 1 MB на JSON-тело хватает всем ручкам

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	// Второй Decode ловит мусор после первого JSON-значения.
	if decoder.More() {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// mapServiceErrorToHTTP переводит сентинельные ошибки сервисного слоя в
// HTTP-статусы. Всё неопознанное — 500 с нейтральным текстом.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "validation failed",
			"problems": validationErr.Problems,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrTooManyAttempts):
		errorResponse(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrRiderNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrResultNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrRiderNicknameConflict),
		errors.Is(err, services.ErrResultConflict):
		errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrResultRefsInvalid),
		errors.Is(err, services.ErrInvalidEventLevel),
		errors.Is(err, services.ErrInvalidEventStatus),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrEventIDRequired):
		errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPointsOverrideForbidden):
		errorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrPhotoStorageDisabled):
		errorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

// urlParamInt достаёт числовой параметр из пути chi.
func urlParamInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// queryInt парсит числовой query-параметр, молча откатываясь к дефолту.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryString возвращает nil для пустых значений, чтобы фильтры
// репозиториев отличали «не задано» от пустой строки.
func queryString(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryIntPtr(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// clientIP берёт адрес клиента для рейт-лимита: сначала X-Forwarded-For
// (первый адрес в цепочке), иначе RemoteAddr без порта.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
