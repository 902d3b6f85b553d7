package themes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sai-kaneko-31/ito/domain"
)

func ListHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": All()})
}

func GetHandler(ctx *gin.Context) {
	theme, err := ByID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": domain.ErrThemeNotFound.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": theme})
}

func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", ListHandler)
	rg.GET("/:id", GetHandler)
}
