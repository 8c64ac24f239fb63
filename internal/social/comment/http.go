package comment

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

// RegisterProfileRoutes mounts the comment endpoints nested under a profile.
func (handler *Handler) RegisterProfileRoutes(router chi.Router) {
	router.Get("/", handler.listProfileComments)
	router.Post("/", handler.createComment)
}

// RegisterRoutes mounts the public /comments endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listComments)
	router.Get("/{commentId}", handler.getComment)
}

// RegisterAdminRoutes mounts moderation endpoints. The caller guards them.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Delete("/{commentId}", handler.deleteComment)
}

func (handler *Handler) listProfileComments(writer http.ResponseWriter, request *http.Request) {
	profileID, err := requestutil.IntParam(request, "profileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.list(writer, request, &profileID)
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	handler.list(writer, request, nil)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request, profileID *int) {
	params, problems := pagination.Parse(request, pagination.DefaultLimit, handler.service.MaxLimit())
	query := request.URL.Query()

	result, err := handler.service.List(request.Context(), ListRequest{
		ProfileID:  profileID,
		Sort:       query.Get(FieldSort),
		Filter:     query.Get(FieldFilter),
		Page:       params.Page,
		Limit:      params.Limit,
		PageErrors: problems,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	profileID, err := requestutil.IntParam(request, "profileId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.Create(request.Context(), profileID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	comment, err := handler.service.Get(request.Context(), requestutil.ID(request, "commentId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.SoftDelete(request.Context(), requestutil.ID(request, "commentId")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
