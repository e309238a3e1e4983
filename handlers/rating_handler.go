package handlers

import (
	"net/http"

	"github.com/alexkachalkov/scootrate/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Rating отдаёт публичный лидерборд. Кривые числовые параметры молча
// заменяются дефолтами: публичная ручка не должна падать от мусора в URL.
func (h *RatingHandler) Rating(w http.ResponseWriter, r *http.Request) {
	query := services.RatingQuery{
		AgeMin:  queryIntPtr(r, "ageMin"),
		AgeMax:  queryIntPtr(r, "ageMax"),
		AllAges: r.URL.Query().Get("allAges") == "1",
		Page:    queryInt(r, "page", 1),
		Limit:   queryInt(r, "limit", 0),
	}
	if s := queryString(r, "search"); s != nil {
		query.Search = *s
	}
	if s := queryString(r, "city"); s != nil {
		query.City = *s
	}
	if s := queryString(r, "style"); s != nil {
		query.Style = *s
	}
	if s := queryString(r, "level"); s != nil {
		query.Level = *s
	}

	page, err := h.ratingService.Rating(r.Context(), query)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// RiderProfile — публичная страница райдера с последними результатами.
func (h *RatingHandler) RiderProfile(w http.ResponseWriter, r *http.Request) {
	riderID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.ratingService.RiderProfile(r.Context(), riderID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
