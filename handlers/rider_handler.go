package handlers

import (
	"net/http"

	"github.com/alexkachalkov/scootrate/middleware"
	"github.com/alexkachalkov/scootrate/services"
)

const maxPhotoSize = 10 << 20 // 10 MB

type RiderHandler struct {
	riderService services.RiderService
}

func NewRiderHandler(riderService services.RiderService) *RiderHandler {
	return &RiderHandler{riderService: riderService}
}

func (h *RiderHandler) List(w http.ResponseWriter, r *http.Request) {
	input := services.ListRidersInput{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 0),
	}
	if s := queryString(r, "search"); s != nil {
		input.Search = *s
	}
	if s := queryString(r, "level"); s != nil {
		input.Level = *s
	}
	if s := queryString(r, "style"); s != nil {
		input.Style = *s
	}
	if s := queryString(r, "city"); s != nil {
		input.City = *s
	}

	page, err := h.riderService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *RiderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	riderID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rider, err := h.riderService.GetByID(r.Context(), riderID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rider)
}

func (h *RiderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	var input services.CreateRiderInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rider, err := h.riderService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rider)
}

func (h *RiderHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	riderID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var input services.UpdateRiderInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rider, err := h.riderService.Update(r.Context(), actor, riderID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rider)
}

func (h *RiderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	riderID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.riderService.Delete(r.Context(), actor, riderID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto принимает multipart-форму с полем "photo" и заливает файл
// в объектное хранилище.
func (h *RiderHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	riderID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rider, err := h.riderService.UploadPhoto(r.Context(), actor, riderID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rider)
}
