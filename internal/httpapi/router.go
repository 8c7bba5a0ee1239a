// Package httpapi exposes the todo store and the premium catalog over http.
package httpapi

import (
	"net/http"
	"time"

	"github.com/denismitr/todostore"
	"github.com/denismitr/todostore/internal/catalog"
	"github.com/denismitr/todostore/internal/paywall"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Options struct {
	Store *todostore.Store
	Cache *ListCache
	// Paywall is nil when everything is served for free
	Paywall *paywall.Paywall
	Logger  *zap.Logger
	AppName string
	Env     string
}

func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Cache == nil {
		opts.Cache = NewListCache(nil)
	}

	r := gin.New()
	r.Use(requestLogger(opts.Logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			HeaderWallet, HeaderNetwork,
			paywall.HeaderPaymentSignature, paywall.HeaderPaymentLegacy,
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Type",
			paywall.HeaderPaymentResponse, paywall.HeaderPaymentRequired,
		},
		MaxAge: 12 * time.Hour,
	}))

	r.GET("/health", healthHandler(opts))

	paid := func(path string, h gin.HandlerFunc) ([]gin.HandlerFunc, error) {
		if opts.Paywall == nil {
			return []gin.HandlerFunc{h}, nil
		}

		protect, err := opts.Paywall.Protect(path)
		if err != nil {
			return nil, err
		}

		return []gin.HandlerFunc{protect, h}, nil
	}

	todos := NewTodoHandler(opts.Store, opts.Cache, opts.Logger)
	chain, err := paid("/api/todos", todos.Handle)
	if err != nil {
		return nil, err
	}
	r.Any("/api/todos", chain...)

	listings := map[string]gin.HandlerFunc{
		"/api/articles": articlesHandler,
		"/api/podcasts": podcastsHandler,
		"/api/videos":   videosHandler,
	}
	for path, h := range listings {
		chain, err := paid(path, h)
		if err != nil {
			return nil, err
		}
		r.GET(path, chain...)
	}

	for _, path := range catalog.ItemPaths() {
		chain, err := paid(path, premiumItemHandler(path))
		if err != nil {
			return nil, err
		}
		r.GET(path, chain...)
	}

	r.NoRoute(func(c *gin.Context) {
		errorJSON(c, http.StatusNotFound, "Not found")
	})

	return r, nil
}

func healthHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"service": opts.AppName,
			"env":     opts.Env,
			"store":   opts.Store.Stats(),
			"cached":  opts.Cache.len(),
			"paywall": opts.Paywall != nil,
		})
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}

		log.Info("request", fields...)
	}
}
