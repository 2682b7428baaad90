package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/handler"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
)

// SetupRouter はルーティングを設定する。
// セッションを扱うのは起動とコース表示のみ。
func SetupRouter(engine *gin.Engine, h *handler.Handler, sessionMW gin.HandlerFunc) {
	// ヘルスチェック
	engine.GET("/", h.HandleRoot)
	engine.GET("/isup", h.HandleIsUp)

	// 静的ファイル
	engine.StaticFS("/js", web.Static())

	engine.POST("/launch", sessionMW, h.HandleLaunch)
	engine.GET("/:course", sessionMW, handler.RequireCourseLaunch(), h.HandleCourse)

	engine.NoRoute(h.HandleNotFound)
}
