package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/service"
)

type listingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *listingHandler {
	return &listingHandler{listingService: listingService}
}

func (h *listingHandler) Create(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())

	var input service.ListingInput
	err := decode(r, &input)
	if err != nil {
		return err
	}

	listing, err := h.listingService.Create(user.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidListing) {
			return apperror.BadRequest(err.Error())
		}
		return err
	}

	return respond(w, http.StatusCreated, listing)
}

func (h *listingHandler) Update(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())

	var input service.ListingInput
	err := decode(r, &input)
	if err != nil {
		return err
	}

	listing, err := h.listingService.Update(user.ID, r.PathValue("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound):
			return apperror.NotFound("Listing not found!")
		case errors.Is(err, service.ErrNotListingOwner):
			return apperror.Unauthorized("You can only update your own listings!")
		case errors.Is(err, service.ErrInvalidListing):
			return apperror.BadRequest(err.Error())
		}
		return err
	}

	return respond(w, http.StatusOK, listing)
}

func (h *listingHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())

	err := h.listingService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound):
			return apperror.NotFound("Listing not found!")
		case errors.Is(err, service.ErrNotListingOwner):
			return apperror.Unauthorized("You can only delete your own listings!")
		}
		return err
	}

	return respond(w, http.StatusOK, "Listing has been deleted!")
}

func (h *listingHandler) Get(w http.ResponseWriter, r *http.Request) error {
	listing, err := h.listingService.ByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return apperror.NotFound("Listing not found!")
		}
		return err
	}

	return respond(w, http.StatusOK, listing)
}

// Search filters listings by the SPA's query parameters. Boolean
// filters only constrain when explicitly "true"; absent or "false"
// means "either", matching how the search page builds its URL.
func (h *listingHandler) Search(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	filter := repository.SearchFilter{
		SearchTerm: q.Get("searchTerm"),
		Offer:      boolFilter(q.Get("offer")),
		Furnished:  boolFilter(q.Get("furnished")),
		Parking:    boolFilter(q.Get("parking")),
		Sort:       q.Get("sort"),
		Order:      q.Get("order"),
	}

	if t := q.Get("type"); t != "" && t != "all" {
		filter.Type = t
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if start, err := strconv.Atoi(q.Get("startIndex")); err == nil {
		filter.StartIndex = start
	}

	listings, err := h.listingService.Search(filter)
	if err != nil {
		return err
	}

	return respond(w, http.StatusOK, listings)
}

func boolFilter(v string) *bool {
	if v == "true" {
		t := true
		return &t
	}
	return nil
}
