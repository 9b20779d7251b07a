package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"hostbook/internal/bookings/service"
	apperrors "hostbook/pkg/errors"
	httputil "hostbook/pkg/http"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) ListByHost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	host, err := h.service.ResolveHost(r.Context(), ps.ByName("host_id"))
	if err != nil {
		h.writeError(w, "ListByHost", err)
		return
	}

	reservations, err := h.service.ViewByHost(r.Context(), host.ID)
	if err != nil {
		h.writeError(w, "ListByHost", err)
		return
	}

	if err := httputil.WriteList(w, model.NewReservationViews(reservations), len(reservations)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListByHost", "operation", "WriteList", "error", err)
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	host, err := h.service.ResolveHost(r.Context(), ps.ByName("host_id"))
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	candidate, err := h.decodeCandidate(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.MakeReservation(r.Context(), &candidate, host); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, model.NewReservationView(candidate)); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// Update changes the dates of an existing reservation. The guest stays the
// same unless the body names another one.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseIntParam("id", ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	host, err := h.service.ResolveHost(r.Context(), ps.ByName("host_id"))
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	candidate, err := h.decodeCandidate(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	existing, err := h.service.GetReservation(r.Context(), host.ID, id)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	candidate.ID = existing.ID
	if candidate.GuestID == "" {
		candidate.GuestID = existing.GuestID
	}

	if err := h.service.EditReservation(r.Context(), &candidate, host); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.NewReservationView(candidate)); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseIntParam("id", ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	host, err := h.service.ResolveHost(r.Context(), ps.ByName("host_id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.CancelReservation(r.Context(), id, host.ID); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no content response", "handler", "Delete", "operation", "WriteNoContent", "error", err)
	}
}

func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	host, err := h.service.ResolveHost(r.Context(), ps.ByName("host_id"))
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	candidate, err := h.decodeCandidate(r)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	total, err := h.service.Quote(r.Context(), &candidate, host)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.QuoteView{
		HostID:    host.ID,
		StartDate: model.FormatDate(candidate.StartDate),
		EndDate:   model.FormatDate(candidate.EndDate),
		Nights:    candidate.Nights(),
		Total:     total.StringFixed(2),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListByGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guest, err := h.service.ResolveGuest(r.Context(), ps.ByName("guest_id"))
	if err != nil {
		h.writeError(w, "ListByGuest", err)
		return
	}

	reservations, err := h.service.ViewByGuest(r.Context(), guest.ID)
	if err != nil {
		h.writeError(w, "ListByGuest", err)
		return
	}

	if err := httputil.WriteList(w, model.NewReservationViews(reservations), len(reservations)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListByGuest", "operation", "WriteList", "error", err)
	}
}

// Search lists reservations of hosts matching the state, city and
// postal_code query parameters. At least one is required.
func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	state := query.Get("state")
	city := query.Get("city")
	postalCode := query.Get("postal_code")

	if strings.TrimSpace(state+city+postalCode) == "" {
		h.writeError(w, "Search", apperrors.InvalidInput("At least one of 'state', 'city' or 'postal_code' is required"))
		return
	}

	reservations, err := h.service.ViewByLocation(r.Context(), state, city, postalCode)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteList(w, model.NewReservationViews(reservations), len(reservations)); err != nil {
		h.log.Error("failed to write list response", "handler", "Search", "operation", "WriteList", "error", err)
	}
}

func (h *ReservationHandler) NextID(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := h.service.NextID(r.Context())
	if err != nil {
		h.writeError(w, "NextID", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.NextIDView{NextID: id}); err != nil {
		h.log.Error("failed to write success response", "handler", "NextID", "operation", "WriteSuccess", "error", err)
	}
}

// decodeCandidate reads a ReservationRequest. A guest given by id or email
// must exist in the guest directory and is replaced by its id; a blank guest
// is left for the booking rules to reject.
func (h *ReservationHandler) decodeCandidate(r *http.Request) (model.Reservation, error) {
	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return model.Reservation{}, err
	}

	candidate, err := req.ToReservation()
	if err != nil {
		return model.Reservation{}, apperrors.InvalidInput(err.Error())
	}

	if strings.TrimSpace(candidate.GuestID) != "" {
		guest, err := h.service.ResolveGuest(r.Context(), candidate.GuestID)
		if err != nil {
			return model.Reservation{}, err
		}
		candidate.GuestID = guest.ID
	}

	return candidate, nil
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/hosts/:host_id/reservations", h.ListByHost)
	router.POST("/api/v1/hosts/:host_id/reservations", h.Create)
	router.PUT("/api/v1/hosts/:host_id/reservations/:id", h.Update)
	router.DELETE("/api/v1/hosts/:host_id/reservations/:id", h.Delete)
	router.POST("/api/v1/hosts/:host_id/quote", h.Quote)
	router.GET("/api/v1/guests/:guest_id/reservations", h.ListByGuest)
	router.GET("/api/v1/reservations", h.Search)
	router.GET("/api/v1/reservations/next-id", h.NextID)
}
