package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/llm/ollama"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	newClient := func(baseURL string) *ollama.Client {
		return ollama.NewClient(ollama.Config{BaseURL: baseURL, Timeout: 5 * time.Second})
	}

	Describe("Generate", func() {
		Context("when the backend replies normally", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					Expect(r.Method).To(Equal(http.MethodPost))
					Expect(r.URL.Path).To(Equal("/api/generate"))

					var req map[string]any
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req["model"]).To(Equal("llama3:latest"))
					Expect(req["prompt"]).To(Equal("Say hi"))
					Expect(req["stream"]).To(BeFalse())

					json.NewEncoder(w).Encode(map[string]any{
						"model":    "llama3:latest",
						"response": "  hi there\n",
						"done":     true,
					})
				}))
			})

			It("returns the trimmed response text", func() {
				text, err := newClient(server.URL).Generate(ctx, "llama3:latest", "Say hi")
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(Equal("hi there"))
			})
		})

		Context("when the response lacks the response field", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					json.NewEncoder(w).Encode(map[string]any{"model": "llama3:latest", "done": true})
				}))
			})

			It("classifies the failure as a malformed response", func() {
				_, err := newClient(server.URL).Generate(ctx, "llama3:latest", "hi")
				Expect(err).To(HaveOccurred())
				Expect(llm.IsKind(err, llm.KindMalformedResponse)).To(BeTrue())
			})
		})

		Context("when the response body is not JSON", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.Write([]byte("<html>definitely not json</html>"))
				}))
			})

			It("classifies the failure as a malformed response", func() {
				_, err := newClient(server.URL).Generate(ctx, "llama3:latest", "hi")
				Expect(llm.IsKind(err, llm.KindMalformedResponse)).To(BeTrue())
			})
		})

		Context("when the model is not loaded", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusNotFound)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "model 'nope' not found, try pulling it first",
					})
				}))
			})

			It("classifies the failure as unsupported and surfaces the backend detail", func() {
				_, err := newClient(server.URL).Generate(ctx, "nope", "hi")
				Expect(llm.IsKind(err, llm.KindUnsupported)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("not found"))
			})
		})

		Context("when the backend is down", func() {
			It("classifies the failure as unreachable", func() {
				dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
				target := dead.URL
				dead.Close()

				_, err := newClient(target).Generate(ctx, "llama3:latest", "hi")
				Expect(llm.IsKind(err, llm.KindUnreachable)).To(BeTrue())
			})
		})

		Context("when the backend hangs past the deadline", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-r.Context().Done():
					case <-time.After(2 * time.Second):
					}
				}))
			})

			It("classifies the failure as timed out", func() {
				client := ollama.NewClient(ollama.Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
				_, err := client.Generate(ctx, "llama3:latest", "hi")
				Expect(llm.IsKind(err, llm.KindTimedOut)).To(BeTrue())
			})

			It("honors a context deadline the same way", func() {
				shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
				defer cancel()

				_, err := newClient(server.URL).Generate(shortCtx, "llama3:latest", "hi")
				Expect(llm.IsKind(err, llm.KindTimedOut)).To(BeTrue())
			})
		})

		Context("with empty input", func() {
			It("rejects an empty prompt without calling the backend", func() {
				calls := 0
				server = httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					calls++
				}))

				_, err := newClient(server.URL).Generate(ctx, "llama3:latest", "")
				Expect(err).To(HaveOccurred())
				Expect(calls).To(BeZero())
			})

			It("rejects an empty model without calling the backend", func() {
				calls := 0
				server = httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					calls++
				}))

				_, err := newClient(server.URL).Generate(ctx, "", "hi")
				Expect(llm.IsKind(err, llm.KindUnsupported)).To(BeTrue())
				Expect(calls).To(BeZero())
			})
		})

		Context("with sampling options configured", func() {
			It("forwards temperature, num_ctx, and stop sequences", func() {
				var got map[string]any
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
					json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
				}))

				temp := 0.0
				numCtx := 4096
				client := ollama.NewClient(ollama.Config{
					BaseURL:     server.URL,
					Temperature: &temp,
					NumCtx:      &numCtx,
					Stop:        []string{"User:", "AI:"},
				})

				_, err := client.Generate(ctx, "llama3:latest", "hi")
				Expect(err).NotTo(HaveOccurred())

				opts, ok := got["options"].(map[string]any)
				Expect(ok).To(BeTrue())
				Expect(opts["temperature"]).To(BeNumerically("==", 0))
				Expect(opts["num_ctx"]).To(BeNumerically("==", 4096))
				Expect(opts["stop"]).To(ConsistOf("User:", "AI:"))
			})
		})
	})

	Describe("Probe", func() {
		It("succeeds against a healthy backend", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"response": "Hello!", "done": true})
			}))

			Expect(newClient(server.URL).Probe(ctx, "llama3:latest")).To(Succeed())
		})

		It("surfaces unreachable backends", func() {
			dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			target := dead.URL
			dead.Close()

			err := newClient(target).Probe(ctx, "llama3:latest")
			Expect(llm.IsKind(err, llm.KindUnreachable)).To(BeTrue())
		})
	})
})
