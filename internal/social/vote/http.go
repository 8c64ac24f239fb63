package vote

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

// SubmitResponse is the body of a vote submission.
type SubmitResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Vote     *Vote  `json:"vote"`
	IsUpdate bool   `json:"isUpdate"`
}

// RemoveResponse is the body of a vote removal.
type RemoveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Vote    *Vote  `json:"vote"`
}

// RegisterCommentRoutes mounts the endpoints under /comments/{commentId}/votes.
func (handler *Handler) RegisterCommentRoutes(router chi.Router) {
	router.Post("/", handler.submitVote)
	router.Get("/", handler.listVotes)
	router.Get("/mine", handler.myCommentVotes)
	router.Delete("/{personalitySystem}", handler.removeVote)
}

// RegisterVoterRoutes mounts the endpoints under /votes.
func (handler *Handler) RegisterVoterRoutes(router chi.Router) {
	router.Get("/mine", handler.myHistory)
}

func (handler *Handler) submitVote(writer http.ResponseWriter, request *http.Request) {
	var input SubmitInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Submit(request.Context(), requestutil.ID(request, "commentId"), voterID(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.IsNewVote {
		respond.Created(writer, SubmitResponse{Success: true, Message: "Vote recorded", Vote: result.Vote})
		return
	}
	respond.OK(writer, SubmitResponse{Success: true, Message: "Vote updated", Vote: result.Vote, IsUpdate: true})
}

func (handler *Handler) removeVote(writer http.ResponseWriter, request *http.Request) {
	removed, err := handler.service.Remove(request.Context(),
		requestutil.ID(request, "commentId"), voterID(request), requestutil.Param(request, "personalitySystem"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, RemoveResponse{Success: true, Message: "Vote removed", Vote: removed})
}

func (handler *Handler) listVotes(writer http.ResponseWriter, request *http.Request) {
	votes, err := handler.service.ListForComment(request.Context(),
		requestutil.ID(request, "commentId"), request.URL.Query().Get("system"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, votes)
}

// myCommentVotes returns the caller's votes on a comment, or the single vote
// for ?system= when given.
func (handler *Handler) myCommentVotes(writer http.ResponseWriter, request *http.Request) {
	commentID := requestutil.ID(request, "commentId")

	if system := requestutil.OptionalQuery(request, "system"); system != nil {
		found, err := handler.service.Find(request.Context(), commentID, voterID(request), *system)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, found)
		return
	}

	votes, err := handler.service.Mine(request.Context(), commentID, voterID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, votes)
}

func (handler *Handler) myHistory(writer http.ResponseWriter, request *http.Request) {
	limit := constants.VoteHistoryLimit
	if raw := requestutil.OptionalQuery(request, FieldLimit); raw != nil {
		parsed, err := strconv.Atoi(*raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldLimit, "Must be an integer"))
			return
		}
		limit = parsed
	}

	votes, err := handler.service.History(request.Context(), voterID(request), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, votes)
}

// voterID prefers the identifier resolved by middleware and derives it
// directly when the handler is mounted without it.
func voterID(request *http.Request) string {
	if id := requestutil.VoterID(request); id != "" {
		return id
	}
	return Identify(request)
}
