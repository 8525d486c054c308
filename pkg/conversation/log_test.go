package conversation_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/archiveai/pkg/conversation"
)

var _ = Describe("Log", func() {
	var log *conversation.Log

	BeforeEach(func() {
		log = conversation.NewLog()
	})

	It("starts empty", func() {
		Expect(log.Messages()).To(BeEmpty())
		Expect(log.Len()).To(Equal(0))

		_, ok := log.Last()
		Expect(ok).To(BeFalse())
	})

	It("keeps insertion order", func() {
		Expect(log.Append(conversation.NewMessage(conversation.KindAssistant, "Hello"))).To(Succeed())
		Expect(log.Append(conversation.NewMessage(conversation.KindUser, "Hi"))).To(Succeed())
		Expect(log.Append(conversation.NewMessage(conversation.KindError, "Error: boom"))).To(Succeed())

		msgs := log.Messages()
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Kind).To(Equal(conversation.KindAssistant))
		Expect(msgs[1].Content).To(Equal("Hi"))
		Expect(msgs[2].Kind).To(Equal(conversation.KindError))

		last, ok := log.Last()
		Expect(ok).To(BeTrue())
		Expect(last.Content).To(Equal("Error: boom"))
	})

	It("rejects unknown kinds", func() {
		err := log.Append(conversation.Message{Kind: "tool", Content: "x"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid message kind"))
		Expect(log.Len()).To(Equal(0))
	})

	It("returns copies that don't alias the history", func() {
		Expect(log.Append(conversation.NewMessage(conversation.KindUser, "original"))).To(Succeed())

		msgs := log.Messages()
		msgs[0].Content = "tampered"

		Expect(log.Messages()[0].Content).To(Equal("original"))
	})

	It("is safe for concurrent appends", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = log.Append(conversation.NewMessage(conversation.KindSystem, "tick"))
			}()
		}
		wg.Wait()

		Expect(log.Len()).To(Equal(50))
	})
})
