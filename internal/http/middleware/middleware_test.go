package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/common/id"
	"github.com/mario1918/testCaseGenie-NG/common/logger"
	"github.com/mario1918/testCaseGenie-NG/internal/http/middleware"
)

var _ = Describe("middleware", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
	})

	Describe("Recovery", func() {
		It("answers 500 JSON after a panic", func() {
			router.Use(middleware.Recovery())
			router.GET("/boom", func(*gin.Context) { panic("kaboom") })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("internal server error"))
			Expect(w.Body.String()).NotTo(ContainSubstring("request_id"))
		})

		It("returns the request id with the 500", func() {
			router.Use(middleware.RequestID(), middleware.Recovery())
			router.GET("/boom", func(*gin.Context) { panic("kaboom") })

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			req.Header.Set(middleware.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("req-42"))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"internal server error","request_id":"req-42"}`))
		})
	})

	Describe("RequestID", func() {
		var seen string

		BeforeEach(func() {
			Expect(id.Init(1)).To(Succeed())
			seen = ""
			router.Use(middleware.RequestID())
			router.GET("/", func(c *gin.Context) {
				if f := logger.GetLogFields(c.Request.Context()); f.RequestID != nil {
					seen = *f.RequestID
				}
				c.Status(http.StatusNoContent)
			})
		})

		It("keeps the caller's id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, "abc123")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("abc123"))
			Expect(seen).To(Equal("abc123"))
		})

		It("generates an id when none is sent", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
			Expect(seen).To(Equal(w.Header().Get(middleware.RequestIDHeader)))
		})
	})

	Describe("CORS", func() {
		It("allows any origin with a wildcard", func() {
			router.Use(middleware.CORS([]string{"*"}))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://localhost:4200")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("rejects origins outside the list", func() {
			router.Use(middleware.CORS([]string{"http://localhost:4200"}))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Logger", func() {
		It("passes the response through", func() {
			router.Use(middleware.Logger())
			router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})
})
