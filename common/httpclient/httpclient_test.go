package httpclient_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/common/httpclient"
)

var _ = Describe("httpclient", func() {
	var (
		server *httptest.Server
		hits   atomic.Int32
	)

	BeforeEach(func() {
		hits.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			switch r.URL.Path {
			case "/json-error":
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"message":"jira unavailable"}`))
			case "/text-error":
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("no such page"))
			default:
				w.WriteHeader(http.StatusOK)
			}
		}))
		DeferCleanup(server.Close)
	})

	It("sends once when retries are off", func() {
		client := httpclient.New(httpclient.Config{Timeout: time.Second})

		resp, err := client.Get(server.URL + "/json-error")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(hits.Load()).To(Equal(int32(1)))
		Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
	})

	It("retries server errors when configured", func() {
		client := httpclient.New(httpclient.Config{MaxRetries: 2, Timeout: time.Second})
		client.RetryWaitMin = time.Millisecond
		client.RetryWaitMax = time.Millisecond

		resp, err := client.Get(server.URL + "/json-error")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(hits.Load()).To(Equal(int32(3)))
	})

	Describe("CheckResponse", func() {
		It("accepts 2xx", func() {
			resp, err := http.Get(server.URL + "/ok")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(httpclient.CheckResponse(resp)).To(Succeed())
		})

		It("reads the JSON message", func() {
			resp, err := http.Get(server.URL + "/json-error")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			err = httpclient.CheckResponse(resp)
			var statusErr *httpclient.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(statusErr.Message).To(Equal("jira unavailable"))
		})

		It("falls back to the raw body", func() {
			resp, err := http.Get(server.URL + "/text-error")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			err = httpclient.CheckResponse(resp)
			Expect(err).To(MatchError(ContainSubstring("status 404: no such page")))
		})
	})
})
