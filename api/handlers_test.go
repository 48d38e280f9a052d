package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentco/lore/pkg/agent"
	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/memory/inmemory"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/research"
)

// stubGenerator answers every prompt with a fixed response.
type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *stubGenerator) Probe(context.Context, string) error {
	return g.err
}

// stubSearcher returns fixed search results.
type stubSearcher struct {
	results string
	err     error
}

func (s *stubSearcher) Search(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.results, nil
}

var _ = Describe("Server", func() {
	var (
		server    *Server
		store     *inmemory.Store
		generator *stubGenerator
		searcher  *stubSearcher
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		generator = &stubGenerator{response: "OK"}
		searcher = &stubSearcher{results: "Result 1:\nTitle: T\nURL: U\nSnippet: S\n---"}

		prompts := prompt.Default()
		logger := slog.New(slog.DiscardHandler)

		server = NewServer(
			Config{
				ListenAddr:    ":0",
				DefaultModel:  "llama3:latest",
				AllowedModels: []string{"llama3:latest", "mistral:latest"},
			},
			store,
			generator,
			prompts,
			research.NewAssistant(searcher, generator, prompts, research.WithLogger(logger)),
			agent.NewAgent(store, generator, prompts, agent.WithLogger(logger)),
			logger,
		)
	})

	get := func(path string) *http.Response {
		resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	postForm := func(path string, form url.Values) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, out)).To(Succeed(), "body: %s", body)
	}

	Describe("GET /ping", func() {
		It("pongs", func() {
			resp := get("/ping")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body string
			decode(resp, &body)
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("POST /chat", func() {
		It("answers and persists the exchange", func() {
			resp := postForm("/chat", url.Values{
				"topic":      {"topicA"},
				"user_input": {"hi"},
				"model":      {"llama3:latest"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ChatResponse
			decode(resp, &body)
			Expect(body.AIResponse).To(Equal("OK"))
			Expect(body.History).To(Equal([]memory.Turn{{User: "hi", AI: "OK", Seq: 0}}))

			history, err := store.History(context.Background(), "topicA")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
		})

		It("falls back to the default model", func() {
			resp := postForm("/chat", url.Values{
				"topic":      {"topicA"},
				"user_input": {"hi"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects blank fields with 400", func() {
			resp := postForm("/chat", url.Values{"topic": {"  "}, "user_input": {"hi"}})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			resp = postForm("/chat", url.Values{"topic": {"topicA"}, "user_input": {" "}})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects models outside the allow-list with 400", func() {
			resp := postForm("/chat", url.Values{
				"topic":      {"topicA"},
				"user_input": {"hi"},
				"model":      {"gpt-oss:20b"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var body ErrorResponse
			decode(resp, &body)
			Expect(body.Error).To(ContainSubstring("llama3:latest"))
		})

		It("maps an unreachable backend to 503 and leaves the store untouched", func() {
			generator.err = &llm.Error{Kind: llm.KindUnreachable, Detail: "connection refused"}

			resp := postForm("/chat", url.Values{
				"topic":      {"topicB"},
				"user_input": {"hi"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))

			history, err := store.History(context.Background(), "topicB")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())
		})

		It("maps a timed-out backend to 504", func() {
			generator.err = &llm.Error{Kind: llm.KindTimedOut, Detail: "deadline exceeded"}

			resp := postForm("/chat", url.Values{
				"topic":      {"topicA"},
				"user_input": {"hi"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusGatewayTimeout))
		})

		It("maps a malformed backend response to 500", func() {
			generator.err = &llm.Error{Kind: llm.KindMalformedResponse, Detail: "no response field"}

			resp := postForm("/chat", url.Values{
				"topic":      {"topicA"},
				"user_input": {"hi"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("POST /analyze", func() {
		It("returns a summary and corrections", func() {
			resp := postForm("/analyze", url.Values{"text": {"long article text"}})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body AnalyzeResponse
			decode(resp, &body)
			Expect(body.Summary).To(Equal("OK"))
			Expect(body.Corrections).To(Equal("OK"))
		})

		It("rejects blank text with 400", func() {
			resp := postForm("/analyze", url.Values{"text": {"   "}})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /research", func() {
		It("returns all four step outputs on success", func() {
			resp := postForm("/research", url.Values{
				"topic": {"quantum computing"},
				"model": {"llama3:latest"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ResearchResponse
			decode(resp, &body)
			Expect(body.Steps).To(HaveLen(4))
			Expect(body.Search).To(ContainSubstring("Result 1:"))
			Expect(body.Report).To(Equal("OK"))
			Expect(body.Error).To(BeNil())
		})

		It("rejects blank topics with 400", func() {
			resp := postForm("/research", url.Values{"topic": {"  "}})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("reports a probe failure as 503 without any step output", func() {
			generator.err = &llm.Error{Kind: llm.KindUnreachable, Detail: "backend down"}

			resp := postForm("/research", url.Values{"topic": {"quantum computing"}})
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))

			var body ResearchResponse
			decode(resp, &body)
			Expect(body.Steps).To(BeEmpty())
			Expect(body.Search).To(Equal("N/A"))
			Expect(body.Report).To(Equal("N/A"))
			Expect(body.Error).NotTo(BeNil())
			Expect(body.Error.Category).To(Equal("unreachable"))
		})

		It("keeps completed step outputs when a later step fails", func() {
			searcher.err = nil
			generator.err = nil

			// probe passes, search passes, summarize fails
			probeOnly := &scriptedGenerator{failFrom: 0}
			prompts := prompt.Default()
			logger := slog.New(slog.DiscardHandler)
			server = NewServer(
				Config{ListenAddr: ":0", DefaultModel: "llama3:latest"},
				store,
				probeOnly,
				prompts,
				research.NewAssistant(searcher, probeOnly, prompts, research.WithLogger(logger)),
				agent.NewAgent(store, probeOnly, prompts, agent.WithLogger(logger)),
				logger,
			)

			resp := postForm("/research", url.Values{"topic": {"quantum computing"}})
			Expect(resp.StatusCode).To(Equal(http.StatusGatewayTimeout))

			var body ResearchResponse
			decode(resp, &body)
			Expect(body.Search).To(ContainSubstring("Result 1:"))
			Expect(body.Summary).To(Equal("N/A"))
			Expect(body.Error).NotTo(BeNil())
			Expect(body.Error.Step).To(Equal(research.StepSummarize))
			Expect(body.Error.Category).To(Equal("timed_out"))
		})
	})

	Describe("GET /topics", func() {
		It("lists topics with at least one turn", func() {
			_, err := store.Append(context.Background(), "alpha", "u", "a")
			Expect(err).NotTo(HaveOccurred())

			resp := get("/topics")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Topics []string `json:"topics"`
			}
			decode(resp, &body)
			Expect(body.Topics).To(ConsistOf("alpha"))
		})

		It("returns an empty list for an empty store", func() {
			resp := get("/topics")

			var body struct {
				Topics []string `json:"topics"`
			}
			decode(resp, &body)
			Expect(body.Topics).To(BeEmpty())
		})
	})

	Describe("GET /history/:topic", func() {
		It("returns turns oldest first", func() {
			_, err := store.Append(context.Background(), "alpha", "u1", "a1")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(context.Background(), "alpha", "u2", "a2")
			Expect(err).NotTo(HaveOccurred())

			resp := get("/history/alpha")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Topic   string        `json:"topic"`
				History []memory.Turn `json:"history"`
			}
			decode(resp, &body)
			Expect(body.Topic).To(Equal("alpha"))
			Expect(body.History).To(HaveLen(2))
			Expect(body.History[0].User).To(Equal("u1"))
		})

		It("returns an empty history for unknown topics", func() {
			resp := get("/history/never-seen")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				History []memory.Turn `json:"history"`
			}
			decode(resp, &body)
			Expect(body.History).To(BeEmpty())
		})
	})

	Describe("GET /export/:topic", func() {
		It("returns the full topic record", func() {
			_, err := store.Append(context.Background(), "alpha", "u", "a")
			Expect(err).NotTo(HaveOccurred())

			resp := get("/export/alpha")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body memory.Topic
			decode(resp, &body)
			Expect(body.Name).To(Equal("alpha"))
			Expect(body.Turns).To(HaveLen(1))
		})

		It("returns 404 for unknown topics", func() {
			resp := get("/export/never-seen")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})

// scriptedGenerator succeeds until failFrom calls have been made, then fails
// with a timeout.
type scriptedGenerator struct {
	calls    int
	failFrom int
}

func (g *scriptedGenerator) Generate(context.Context, string, string) (string, error) {
	call := g.calls
	g.calls++
	if call >= g.failFrom {
		return "", &llm.Error{Kind: llm.KindTimedOut, Detail: "took too long"}
	}
	return "OK", nil
}

func (g *scriptedGenerator) Probe(context.Context, string) error {
	return nil
}
