package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lvdashuaibi/agendavote/internal/service"
)

type agendaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type associateRequest struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

type sessionRequest struct {
	AgendaID        string `json:"agendaId"`
	DurationMinutes int64  `json:"durationMinutes"`
}

type voteRequest struct {
	SessionID string `json:"sessionId"`
	CPF       string `json:"cpf"`
	Name      string `json:"name"`
	Option    string `json:"option"`
}

func (h *Handler) listAgendas(c *gin.Context) {
	agendas, err := h.services.Agendas.ListAgendas(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(agendas))
}

func (h *Handler) getAgenda(c *gin.Context) {
	agenda, err := h.services.Agendas.GetAgenda(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agenda)
}

func (h *Handler) createAgenda(c *gin.Context) {
	var req agendaRequest
	if !h.bind(c, &req) {
		return
	}
	agenda, err := h.services.Agendas.CreateAgenda(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, agenda)
}

func (h *Handler) listAssociates(c *gin.Context) {
	associates, err := h.services.Associates.ListAssociates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(associates))
}

func (h *Handler) getAssociate(c *gin.Context) {
	associate, err := h.services.Associates.GetAssociate(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, associate)
}

func (h *Handler) createAssociate(c *gin.Context) {
	var req associateRequest
	if !h.bind(c, &req) {
		return
	}
	associate, err := h.services.Associates.RegisterAssociate(c.Request.Context(), req.Name, req.CPF)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, associate)
}

func (h *Handler) castVote(c *gin.Context) {
	var req voteRequest
	if !h.bind(c, &req) {
		return
	}
	confirmation, err := h.services.Votes.CastVote(c.Request.Context(), service.CastVoteRequest{
		SessionID:  req.SessionID,
		NationalID: req.CPF,
		Name:       req.Name,
		Option:     req.Option,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.services.Sessions.ListSessions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(sessions))
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.services.Sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) openSession(c *gin.Context) {
	var req sessionRequest
	if !h.bind(c, &req) {
		return
	}
	session, err := h.services.Sessions.OpenSession(c.Request.Context(), req.AgendaID, req.DurationMinutes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) getResult(c *gin.Context) {
	result, err := h.services.Results.GetResult(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
