package handlers

import (
	"net/http"

	"github.com/alexkachalkov/scootrate/middleware"
	"github.com/alexkachalkov/scootrate/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) eventsInput(r *http.Request) services.ListEventsInput {
	input := services.ListEventsInput{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 0),
	}
	if s := queryString(r, "status"); s != nil {
		input.Status = *s
	}
	if s := queryString(r, "level"); s != nil {
		input.Level = *s
	}
	if s := queryString(r, "city"); s != nil {
		input.City = *s
	}
	if s := queryString(r, "search"); s != nil {
		input.Search = *s
	}
	if s := queryString(r, "dateFrom"); s != nil {
		input.DateFrom = *s
	}
	if s := queryString(r, "dateTo"); s != nil {
		input.DateTo = *s
	}
	return input
}

// ListPublished — публичная афиша: только опубликованные события.
func (h *EventHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	page, err := h.eventService.ListPublished(r.Context(), h.eventsInput(r))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetWithResults — публичная страница события с итоговой таблицей.
func (h *EventHandler) GetWithResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.eventService.GetWithResults(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.eventService.List(r.Context(), h.eventsInput(r))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.eventService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.eventService.Update(r.Context(), actor, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.eventService.Publish(r.Context(), actor, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.eventService.Delete(r.Context(), actor, eventID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
