package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"avrctl/pkg/command"
	"avrctl/pkg/database"
	"avrctl/pkg/status"

	"github.com/gin-gonic/gin"
)

// ExecuteRequest is the caller-facing execution payload.
type ExecuteRequest struct {
	ReceiverModel string         `json:"receiver_model" binding:"required"`
	ActionName    string         `json:"action_name" binding:"required"`
	Host          string         `json:"host" binding:"required"`
	Port          int            `json:"port" binding:"omitempty,min=1,max=65535"`
	Parameters    map[string]any `json:"parameters"`
}

// ExecuteHandler exposes the command executor.
type ExecuteHandler struct {
	executor *command.Executor
	store    *database.CommandStore
	status   *status.Client
}

func NewExecuteHandler(executor *command.Executor, store *database.CommandStore, statusClient *status.Client) *ExecuteHandler {
	return &ExecuteHandler{executor: executor, store: store, status: statusClient}
}

// Execute runs one command and renders the uniform outcome shape:
// {success, response_excerpt, error{kind, message}, elapsed_ms}.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.executor.Execute(c.Request.Context(), command.Request{
		Model:      req.ReceiverModel,
		Action:     req.ActionName,
		Host:       req.Host,
		Port:       req.Port,
		Parameters: req.Parameters,
	})
	if err != nil {
		h.respondFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"response_excerpt": outcome.Response,
		"error":            nil,
		"elapsed_ms":       outcome.Elapsed.Milliseconds(),
	})
}

// Power is a convenience route: POST /power/:action with {receiver_model,
// host, port} translates to the power_<action> command.
func (h *ExecuteHandler) Power(c *gin.Context) {
	action := c.Param("action")
	if action != "on" && action != "off" {
		respondError(c, http.StatusBadRequest, `invalid action, use "on" or "off"`)
		return
	}

	var req struct {
		ReceiverModel string `json:"receiver_model" binding:"required"`
		Host          string `json:"host" binding:"required"`
		Port          int    `json:"port" binding:"omitempty,min=1,max=65535"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.executor.Execute(c.Request.Context(), command.Request{
		Model:  req.ReceiverModel,
		Action: "power_" + action,
		Host:   req.Host,
		Port:   req.Port,
	})
	if err != nil {
		h.respondFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "receiver powered " + action,
		"elapsed_ms": outcome.Elapsed.Milliseconds(),
	})
}

// Commands lists the command catalog of one receiver model.
func (h *ExecuteHandler) Commands(c *gin.Context) {
	model := c.Param("model")
	cmds, err := h.store.ListCommands(c.Request.Context(), model)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, cmds)
}

// Status queries a receiver's current state over its HTTP status endpoint.
func (h *ExecuteHandler) Status(c *gin.Context) {
	host := c.Query("receiver_ip")
	if host == "" {
		respondError(c, http.StatusBadRequest, "receiver_ip parameter is required")
		return
	}
	port := 80
	if p, err := parsePort(c.Query("port")); err != nil {
		respondError(c, http.StatusBadRequest, "invalid port")
		return
	} else if p != 0 {
		port = p
	}

	st, err := h.status.Fetch(c.Request.Context(), host, port)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": st})
}

// respondFailure maps executor errors onto HTTP statuses while keeping the
// uniform outcome body.
func (h *ExecuteHandler) respondFailure(c *gin.Context, err error) {
	var cmdErr *command.Error
	if !errors.As(err, &cmdErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"kind": "internal", "message": err.Error()},
		})
		return
	}

	httpStatus := http.StatusBadGateway
	switch {
	case cmdErr.Kind == command.KindNotFound:
		httpStatus = http.StatusNotFound
	case cmdErr.ClientError():
		httpStatus = http.StatusBadRequest
	case cmdErr.Kind == command.KindTemplateMismatch,
		cmdErr.Kind == command.KindUnsupportedProtocol:
		httpStatus = http.StatusInternalServerError
	case cmdErr.Kind == command.KindTimeout:
		httpStatus = http.StatusGatewayTimeout
	}

	c.JSON(httpStatus, gin.H{
		"success":          false,
		"response_excerpt": nil,
		"error": gin.H{
			"kind":    string(cmdErr.Kind),
			"message": cmdErr.Error(),
		},
	})
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}
