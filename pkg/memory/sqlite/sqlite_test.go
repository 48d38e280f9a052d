package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/memory/sqlite"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *sqlite.Store
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		store, err = sqlite.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Append and History", func() {
		It("creates a topic implicitly on first append", func() {
			turn, err := store.Append(ctx, "quantum", "hi", "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Seq).To(Equal(0))

			history, err := store.History(ctx, "quantum")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(Equal([]memory.Turn{{User: "hi", AI: "hello", Seq: 0}}))
		})

		It("grows history by exactly one per append, last element matching", func() {
			_, err := store.Append(ctx, "quantum", "first", "one")
			Expect(err).NotTo(HaveOccurred())

			before, err := store.History(ctx, "quantum")
			Expect(err).NotTo(HaveOccurred())

			appended, err := store.Append(ctx, "quantum", "second", "two")
			Expect(err).NotTo(HaveOccurred())

			after, err := store.History(ctx, "quantum")
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(len(before) + 1))
			Expect(after[len(after)-1]).To(Equal(appended))
		})

		It("preserves insertion order under sequential appends", func() {
			_, err := store.Append(ctx, "order", "u1", "a1")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, "order", "u2", "a2")
			Expect(err).NotTo(HaveOccurred())

			history, err := store.History(ctx, "order")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(Equal([]memory.Turn{
				{User: "u1", AI: "a1", Seq: 0},
				{User: "u2", AI: "a2", Seq: 1},
			}))
		})

		It("keeps topics independent", func() {
			_, err := store.Append(ctx, "alpha", "a", "1")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, "beta", "b", "2")
			Expect(err).NotTo(HaveOccurred())

			alpha, err := store.History(ctx, "alpha")
			Expect(err).NotTo(HaveOccurred())
			Expect(alpha).To(HaveLen(1))
			Expect(alpha[0].User).To(Equal("a"))
		})

		It("returns an empty history for unknown topics", func() {
			history, err := store.History(ctx, "never-seen")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())
		})

		It("rejects empty topic names", func() {
			_, err := store.Append(ctx, "", "hi", "hello")
			Expect(err).To(HaveOccurred())
		})

		It("serializes concurrent appends with no lost or duplicated turns", func() {
			const writers = 16

			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := store.Append(ctx, "contended", fmt.Sprintf("user-%d", i), fmt.Sprintf("ai-%d", i))
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			history, err := store.History(ctx, "contended")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(writers))

			seenSeq := map[int]bool{}
			seenUser := map[string]bool{}
			for _, turn := range history {
				Expect(seenSeq[turn.Seq]).To(BeFalse(), "duplicate seq %d", turn.Seq)
				Expect(seenUser[turn.User]).To(BeFalse(), "duplicate turn %s", turn.User)
				seenSeq[turn.Seq] = true
				seenUser[turn.User] = true
			}
			for i := 0; i < writers; i++ {
				Expect(seenSeq[i]).To(BeTrue(), "missing seq %d", i)
			}
		})
	})

	Describe("Topics", func() {
		It("returns every topic exactly once", func() {
			_, err := store.Append(ctx, "alpha", "a", "1")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, "beta", "b", "2")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, "alpha", "a2", "3")
			Expect(err).NotTo(HaveOccurred())

			topics, err := store.Topics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(topics).To(ConsistOf("alpha", "beta"))
		})

		It("returns nothing for an empty store", func() {
			topics, err := store.Topics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(topics).To(BeEmpty())
		})
	})

	Describe("Export", func() {
		It("returns the full topic record", func() {
			_, err := store.Append(ctx, "quantum", "hi", "hello")
			Expect(err).NotTo(HaveOccurred())

			topic, err := store.Export(ctx, "quantum")
			Expect(err).NotTo(HaveOccurred())
			Expect(topic.Name).To(Equal("quantum"))
			Expect(topic.Turns).To(HaveLen(1))
		})

		It("fails with ErrNotFound for unknown topics", func() {
			_, err := store.Export(ctx, "never-seen")
			Expect(memory.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("durability", func() {
		It("retains appended turns across close and reopen", func() {
			path := filepath.Join(GinkgoT().TempDir(), "memory.db")

			first, err := sqlite.NewStore(path)
			Expect(err).NotTo(HaveOccurred())
			_, err = first.Append(ctx, "persistent", "hi", "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewStore(path)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			history, err := second.History(ctx, "persistent")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(Equal([]memory.Turn{{User: "hi", AI: "hello", Seq: 0}}))
		})
	})
})
