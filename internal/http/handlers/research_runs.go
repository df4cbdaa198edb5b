package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/http/response"
	"github.com/inquiryos/inquiry-os/internal/orchestrator"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

type ResearchRunHandler struct {
	orch *orchestrator.Orchestrator
}

func NewResearchRunHandler(orch *orchestrator.Orchestrator) *ResearchRunHandler {
	return &ResearchRunHandler{orch: orch}
}

type createRunRequest struct {
	Query string `json:"query" binding:"required"`
	Title string `json:"title"`
}

// POST /api/v1/research-runs
func (h *ResearchRunHandler) Create(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	run, err := h.orch.Create(c.Request.Context(), req.Query, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, run)
}

// GET /api/v1/research-runs
func (h *ResearchRunHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	runs, err := h.orch.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, runs)
}

// GET /api/v1/research-runs/:id
func (h *ResearchRunHandler) Get(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	run, err := h.orch.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, run)
}

// GET /api/v1/research-runs/:id/detail
func (h *ResearchRunHandler) Detail(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.orch.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// GET /api/v1/research-runs/:id/state
func (h *ResearchRunHandler) State(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.orch.GetState(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// POST /api/v1/research-runs/:id/search-dummy
func (h *ResearchRunHandler) SearchDummy(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.orch.RunDummySearch(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.respondDetail(c, id)
}

// POST /api/v1/research-runs/:id/synthesize-dummy
func (h *ResearchRunHandler) SynthesizeDummy(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.orch.RunDummySynthesis(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.respondDetail(c, id)
}

type executeRequest struct {
	Mode string `json:"mode"`
}

// POST /api/v1/research-runs/:id/execute
func (h *ResearchRunHandler) Execute(c *gin.Context) {
	id, err := parseRunID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req executeRequest
	_ = c.ShouldBindJSON(&req)

	mode := research.ModeDummy
	if req.Mode == string(research.ModeReal) {
		mode = research.ModeReal
	}

	detail, err := h.orch.Execute(c.Request.Context(), id, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

func (h *ResearchRunHandler) respondDetail(c *gin.Context, id uuid.UUID) {
	detail, err := h.orch.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

func parseRunID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.NotFound("invalid_run_id", err)
	}
	return id, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
