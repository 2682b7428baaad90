package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/pkg/httputil"
)

// HandleRoot はGET / のハンドラー。
func (h *Handler) HandleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Hello world\n")
}

// HandleIsUp はGET /isup のハンドラー。
func (h *Handler) HandleIsUp(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// HandleNotFound は未定義ルートのハンドラー。
func (h *Handler) HandleNotFound(c *gin.Context) {
	httputil.WriteError(c, httputil.NotFound("no route for "+c.Request.URL.Path))
}
