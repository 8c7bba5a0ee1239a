package httpapi

import (
	"net/http"

	"github.com/denismitr/todostore/internal/catalog"
	"github.com/gin-gonic/gin"
)

func articlesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"articles": catalog.Articles()})
}

func podcastsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"podcasts": catalog.Podcasts()})
}

func videosHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"videos": catalog.Videos()})
}

func premiumItemHandler(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := catalog.Lookup(path)
		if !ok {
			errorJSON(c, http.StatusNotFound, "Not found")
			return
		}

		c.JSON(http.StatusOK, item)
	}
}
