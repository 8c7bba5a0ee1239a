package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/denismitr/todostore"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	HeaderWallet  = "x-user-wallet"
	HeaderNetwork = "x-user-network"

	maxBodyInBytes = 64 << 10
)

type TodoHandler struct {
	store *todostore.Store
	cache *ListCache
	log   *zap.Logger
}

func NewTodoHandler(s *todostore.Store, cache *ListCache, log *zap.Logger) *TodoHandler {
	if cache == nil {
		cache = NewListCache(nil)
	}

	return &TodoHandler{store: s, cache: cache, log: log}
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Handle serves every method of /api/todos. The identity comes from the
// x-user-wallet and x-user-network headers.
func (h *TodoHandler) Handle(c *gin.Context) {
	id, err := todostore.NewIdentity(c.GetHeader(HeaderNetwork), c.GetHeader(HeaderWallet))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Wallet address required in x-user-wallet header")
		return
	}

	switch c.Request.Method {
	case http.MethodGet:
		h.list(c, id)
	case http.MethodPost:
		h.create(c, id)
	case http.MethodPut:
		h.update(c, id)
	case http.MethodDelete:
		h.delete(c, id)
	default:
		errorJSON(c, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *TodoHandler) list(c *gin.Context, id todostore.Identity) {
	body, gen, ok := h.cache.get(id.Key())
	if ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	todos, err := h.store.List(c.Request.Context(), id.Network, id.Wallet)
	if err != nil {
		h.storageFailed(c, "list", err)
		return
	}

	body, err = json.Marshal(gin.H{"todos": todos})
	if err != nil {
		h.storageFailed(c, "list", err)
		return
	}

	h.cache.put(gen, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *TodoHandler) create(c *gin.Context, id todostore.Identity) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	if err := createTodoBody.validate(body); err != nil {
		h.badBody(c, err, "text", "Text is required")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errorJSON(c, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}

	todo, err := h.store.Create(c.Request.Context(), id.Network, id.Wallet, req.Text)
	if err != nil {
		if errors.Is(err, todostore.ErrEmptyText) {
			errorJSON(c, http.StatusBadRequest, "Text is required")
			return
		}

		h.storageFailed(c, "create", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

func (h *TodoHandler) update(c *gin.Context, id todostore.Identity) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	if err := updateTodoBody.validate(body); err != nil {
		h.badBody(c, err, "id", "ID is required")
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errorJSON(c, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}

	patch, err := todostore.PatchFromJSON(body)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.store.Update(c.Request.Context(), id.Network, id.Wallet, req.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, todostore.ErrTodoNotFound):
			errorJSON(c, http.StatusNotFound, "Todo not found")
		case errors.Is(err, todostore.ErrInvalidPatch), errors.Is(err, todostore.ErrEmptyID):
			errorJSON(c, http.StatusBadRequest, err.Error())
		default:
			h.storageFailed(c, "update", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

func (h *TodoHandler) delete(c *gin.Context, id todostore.Identity) {
	todoID := c.Query("id")
	if todoID == "" {
		errorJSON(c, http.StatusBadRequest, "ID is required")
		return
	}

	removed, err := h.store.Delete(c.Request.Context(), id.Network, id.Wallet, todoID)
	if err != nil {
		h.storageFailed(c, "delete", err)
		return
	}

	if !removed {
		errorJSON(c, http.StatusNotFound, "Todo not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TodoHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyInBytes+1))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "could not read request body")
		return nil, false
	}

	if len(body) > maxBodyInBytes {
		errorJSON(c, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}

	return body, true
}

// badBody answers a body that failed its schema. A problem with the
// required field gets the message clients already rely on.
func (h *TodoHandler) badBody(c *gin.Context, err error, required, requiredMsg string) {
	var fe fieldError
	if errors.As(err, &fe) {
		if fe.field == required {
			errorJSON(c, http.StatusBadRequest, requiredMsg)
			return
		}

		errorJSON(c, http.StatusBadRequest, fe.Error())
		return
	}

	errorJSON(c, http.StatusBadRequest, err.Error())
}

func (h *TodoHandler) storageFailed(c *gin.Context, op string, err error) {
	h.log.Error("todo "+op+" failed", zap.Error(err))
	errorJSON(c, http.StatusInternalServerError, "Internal server error")
}
