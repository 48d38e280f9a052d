package search_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentco/lore/pkg/search"
)

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newClient := func(endpoint string) *search.Client {
		return search.NewClient(search.Config{
			Endpoint: endpoint,
			APIKey:   "test-key",
			Results:  5,
		})
	}

	Context("with a responsive provider", func() {
		It("formats each organic result as a numbered block", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"organic_results": [
						{"title": "Quantum Basics", "link": "https://example.com/q", "snippet": "An intro."},
						{"title": "More Quantum", "link": "https://example.com/m", "snippet": "Deeper."}
					]
				}`))
			}))
			defer server.Close()

			results, err := newClient(server.URL).Search(ctx, "quantum computing")
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(Equal(
				"Result 1:\nTitle: Quantum Basics\nURL: https://example.com/q\nSnippet: An intro.\n---\n" +
					"Result 2:\nTitle: More Quantum\nURL: https://example.com/m\nSnippet: Deeper.\n---"))
		})

		It("sends the engine, query, key, and result cap", func() {
			var query url.Values
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				_, _ = w.Write([]byte(`{"organic_results": []}`))
			}))
			defer server.Close()

			_, err := newClient(server.URL).Search(ctx, "quantum computing")
			Expect(err).NotTo(HaveOccurred())
			Expect(query.Get("engine")).To(Equal("duckduckgo"))
			Expect(query.Get("q")).To(Equal("quantum computing"))
			Expect(query.Get("api_key")).To(Equal("test-key"))
			Expect(query.Get("num")).To(Equal("5"))
		})

		It("fills missing result fields with N/A", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"organic_results": [{"title": "Only Title"}]}`))
			}))
			defer server.Close()

			results, err := newClient(server.URL).Search(ctx, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(Equal("Result 1:\nTitle: Only Title\nURL: N/A\nSnippet: N/A\n---"))
		})

		It("succeeds with a no-results sentence when nothing matches", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			}))
			defer server.Close()

			results, err := newClient(server.URL).Search(ctx, "xyzzy")
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(Equal("No relevant search results found for 'xyzzy'."))
		})
	})

	Context("with a misconfigured or failing provider", func() {
		It("fails without calling the provider when the API key is missing", func() {
			called := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			defer server.Close()

			client := search.NewClient(search.Config{Endpoint: server.URL})
			_, err := client.Search(ctx, "quantum computing")

			var searchErr *search.Error
			Expect(errors.As(err, &searchErr)).To(BeTrue())
			Expect(searchErr.Detail).To(ContainSubstring("API key"))
			Expect(called).To(BeFalse())
		})

		It("fails on non-200 provider responses", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			_, err := newClient(server.URL).Search(ctx, "quantum computing")

			var searchErr *search.Error
			Expect(errors.As(err, &searchErr)).To(BeTrue())
			Expect(searchErr.Detail).To(ContainSubstring("401"))
		})

		It("fails on undecodable provider responses", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			}))
			defer server.Close()

			_, err := newClient(server.URL).Search(ctx, "quantum computing")

			var searchErr *search.Error
			Expect(errors.As(err, &searchErr)).To(BeTrue())
		})

		It("fails when the provider is unreachable", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			_, err := newClient(server.URL).Search(ctx, "quantum computing")

			var searchErr *search.Error
			Expect(errors.As(err, &searchErr)).To(BeTrue())
		})

		It("rejects empty queries", func() {
			_, err := newClient("http://unused").Search(ctx, "   ")
			Expect(err).To(HaveOccurred())
		})
	})
})
