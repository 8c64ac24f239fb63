package stats

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/personae/internal/platform/constants"
	requestutil "github.com/taibuivan/personae/internal/platform/request"
	"github.com/taibuivan/personae/internal/platform/respond"
	"github.com/taibuivan/personae/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the /stats endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/global", handler.globalStats)
	router.Get("/top", handler.topComments)
}

// RegisterCommentRoutes mounts the per-comment statistics endpoint.
func (handler *Handler) RegisterCommentRoutes(router chi.Router) {
	router.Get("/", handler.commentStats)
}

func (handler *Handler) commentStats(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.CommentStats(request.Context(), requestutil.ID(request, "commentId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) globalStats(writer http.ResponseWriter, request *http.Request) {
	commentID := ""
	if raw := requestutil.OptionalQuery(request, FieldCommentID); raw != nil {
		commentID = *raw
	}

	summary, err := handler.service.GlobalStats(request.Context(), commentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

func (handler *Handler) topComments(writer http.ResponseWriter, request *http.Request) {
	limit := constants.TopCommentsDefaultLimit
	if raw := requestutil.OptionalQuery(request, FieldLimit); raw != nil {
		parsed, err := strconv.Atoi(*raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldLimit, "Must be an integer"))
			return
		}
		limit = parsed
	}

	comments, err := handler.service.TopComments(request.Context(), request.URL.Query().Get(FieldSystem), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comments)
}
