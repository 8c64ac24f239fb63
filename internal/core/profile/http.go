package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/personae/internal/platform/request"
	"github.com/taibuivan/personae/internal/platform/respond"
	"github.com/taibuivan/personae/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public read endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listProfiles)
	router.Get("/{profileId}", handler.getProfile)
}

// RegisterAdminRoutes mounts the write endpoints. The caller guards them.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/", handler.createProfile)
	router.Put("/{profileId}", handler.updateProfile)
	router.Delete("/{profileId}", handler.deleteProfile)
}

func (handler *Handler) listProfiles(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:    request.URL.Query().Get("q"),
		Category: request.URL.Query().Get("category"),
	}

	profiles, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profileID, err := requestutil.IntParam(request, "profileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Get(request.Context(), profileID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) createProfile(writer http.ResponseWriter, request *http.Request) {
	var input Profile
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Create(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	profileID, err := requestutil.IntParam(request, "profileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Profile
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Update(request.Context(), profileID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteProfile(writer http.ResponseWriter, request *http.Request) {
	profileID, err := requestutil.IntParam(request, "profileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), profileID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
