package handlers

import (
	"net/http"

	"github.com/alexkachalkov/scootrate/middleware"
	"github.com/alexkachalkov/scootrate/services"
)

const maxCSVSize = 5 << 20 // 5 MB

type ResultHandler struct {
	resultService services.ResultService
	importService services.ImportService
	seasonService services.SeasonService
}

func NewResultHandler(
	resultService services.ResultService,
	importService services.ImportService,
	seasonService services.SeasonService,
) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		importService: importService,
		seasonService: seasonService,
	}
}

// ListByEvent отдаёт результаты одного события; eventId обязателен.
// Старое имя параметра event_id тоже принимается.
func (h *ResultHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := queryInt(r, "eventId", 0)
	if eventID == 0 {
		eventID = queryInt(r, "event_id", 0)
	}

	results, err := h.resultService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ResultHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	var input services.CreateResultInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.resultService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ResultHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	resultID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var input services.UpdateResultInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.resultService.Update(r.Context(), actor, resultID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	resultID, err := urlParamInt(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resultService.Delete(r.Context(), actor, resultID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCSV принимает multipart-форму с полем "file" и возвращает отчёт
// с построчными ошибками.
func (h *ResultHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxCSVSize); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "csv file is required")
		return
	}
	defer file.Close()

	report, err := h.importService.ImportResultsCSV(r.Context(), actor, file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RecalculateSeason — ручной пересчёт сезонного рейтинга.
func (h *ResultHandler) RecalculateSeason(w http.ResponseWriter, r *http.Request) {
	if err := h.seasonService.Recalculate(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}
