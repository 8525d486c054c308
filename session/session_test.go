package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/client"
	"github.com/papercomputeco/archiveai/pkg/conversation"
	"github.com/papercomputeco/archiveai/session"
)

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		backend *fakeBackend
		sess    *session.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = newFakeBackend()
		sess = session.New(backend, zap.NewNop())
	})

	It("has an id and an empty transcript", func() {
		Expect(sess.ID()).NotTo(BeEmpty())
		Expect(sess.Messages()).To(BeEmpty())
		Expect(sess.PendingResponse()).To(BeFalse())
		Expect(sess.PendingUpload()).To(BeFalse())
	})

	Describe("greeting", func() {
		It("appends the greeting as the first assistant message", func() {
			sess.Greet(ctx)

			Expect(sess.Messages()).To(HaveLen(1))
			Expect(sess.Messages()[0].Kind).To(Equal(conversation.KindAssistant))
			Expect(sess.Messages()[0].Content).To(Equal("Hello"))
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("holds pendingResponse while the request is in flight", func() {
			var pendingDuring bool
			backend.startFn = func(context.Context) (string, error) {
				pendingDuring = sess.PendingResponse()
				return "Hello", nil
			}

			sess.Greet(ctx)

			Expect(pendingDuring).To(BeTrue())
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("leaves the transcript empty on a network error", func() {
			backend.startFn = func(context.Context) (string, error) {
				return "", errors.New("connection refused")
			}

			sess.Greet(ctx)

			Expect(sess.Messages()).To(BeEmpty())
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("treats an empty greeting as a failure", func() {
			backend.startFn = func(context.Context) (string, error) {
				return "", nil
			}

			sess.Greet(ctx)

			Expect(sess.Messages()).To(BeEmpty())
		})

		It("recovers from a panicking backend", func() {
			backend.startFn = func(context.Context) (string, error) {
				panic("boom")
			}

			Expect(func() { sess.Greet(ctx) }).NotTo(Panic())
			Expect(sess.Messages()).To(BeEmpty())
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("runs only once per session", func() {
			sess.Greet(ctx)
			sess.Greet(ctx)

			Expect(backend.count("start")).To(Equal(1))
			Expect(sess.Messages()).To(HaveLen(1))
		})

		It("is not retried after a failure", func() {
			backend.startFn = func(context.Context) (string, error) {
				return "", errors.New("down")
			}
			sess.Greet(ctx)
			Expect(sess.BeginGreeting()).To(BeFalse())
		})
	})

	Describe("prompt submission", func() {
		It("echoes the trimmed prompt before the assistant reply", func() {
			var during []conversation.Message
			backend.queryFn = func(_ context.Context, prompt string) (string, error) {
				during = sess.Messages()
				return "answer to " + prompt, nil
			}

			sess.SetDraft("  what is archived?  ")
			msg, ok := sess.Submit(ctx)

			Expect(ok).To(BeTrue())
			Expect(during).To(HaveLen(1))
			Expect(during[0].Kind).To(Equal(conversation.KindUser))
			Expect(during[0].Content).To(Equal("what is archived?"))

			Expect(msg.Kind).To(Equal(conversation.KindAssistant))
			Expect(msg.Content).To(Equal("answer to what is archived?"))

			msgs := sess.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Kind).To(Equal(conversation.KindUser))
			Expect(msgs[1].Kind).To(Equal(conversation.KindAssistant))
		})

		It("clears the draft before the response arrives", func() {
			var draftDuring string
			backend.queryFn = func(context.Context, string) (string, error) {
				draftDuring = sess.Draft()
				return "ok", nil
			}

			sess.SetDraft("hello")
			sess.Submit(ctx)

			Expect(draftDuring).To(BeEmpty())
			Expect(sess.Draft()).To(BeEmpty())
		})

		It("holds pendingResponse strictly while the query is in flight", func() {
			var pendingDuring bool
			backend.queryFn = func(context.Context, string) (string, error) {
				pendingDuring = sess.PendingResponse()
				return "ok", nil
			}

			sess.SetDraft("hello")
			Expect(sess.PendingResponse()).To(BeFalse())
			sess.Submit(ctx)

			Expect(pendingDuring).To(BeTrue())
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		DescribeTable("ignores blank drafts",
			func(draft string) {
				sess.SetDraft(draft)
				_, ok := sess.Submit(ctx)

				Expect(ok).To(BeFalse())
				Expect(backend.count("query")).To(Equal(0))
				Expect(sess.Messages()).To(BeEmpty())
				Expect(sess.PendingResponse()).To(BeFalse())
			},
			Entry("empty", ""),
			Entry("spaces", "   "),
			Entry("tabs and newlines", "\t\n "),
		)

		It("turns a transport error into an error message", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				return "", errors.New("connection refused")
			}

			sess.SetDraft("hello")
			msg, ok := sess.Submit(ctx)

			Expect(ok).To(BeTrue())
			Expect(msg.Kind).To(Equal(conversation.KindError))
			Expect(msg.Content).To(Equal("Error: connection refused"))
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("turns a missing response field into an error message", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				return "", nil
			}

			sess.SetDraft("hello")
			msg, _ := sess.Submit(ctx)

			Expect(msg.Kind).To(Equal(conversation.KindError))
			Expect(msg.Content).To(Equal("Error: invalid response format from server"))
			for _, m := range sess.Messages() {
				Expect(m.Kind).NotTo(Equal(conversation.KindAssistant))
			}
		})

		It("records the client's invalid-response error like an empty response", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				return "", client.ErrInvalidResponse
			}

			sess.SetDraft("hello")
			msg, _ := sess.Submit(ctx)

			Expect(errors.Is(session.ErrInvalidResponse, client.ErrInvalidResponse)).To(BeTrue())
			Expect(msg.Content).To(Equal("Error: " + session.ErrInvalidResponse.Error()))
		})

		It("falls back to a generic message when the error has no description", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				return "", errors.New("")
			}

			sess.SetDraft("hello")
			msg, _ := sess.Submit(ctx)

			Expect(msg.Content).To(Equal("Error: Failed to send message. Please try again."))
		})

		It("releases pendingResponse when the backend panics", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				panic("boom")
			}

			sess.SetDraft("hello")
			var msg conversation.Message
			Expect(func() { msg, _ = sess.Submit(ctx) }).NotTo(Panic())

			Expect(sess.PendingResponse()).To(BeFalse())
			Expect(msg.Kind).To(Equal(conversation.KindError))
			Expect(msg.Content).To(ContainSubstring("backend panic: boom"))
		})

		It("refuses a second submission while one is pending", func() {
			sess.SetDraft("first")
			prompt, ok := sess.BeginSubmit()
			Expect(ok).To(BeTrue())
			Expect(prompt).To(Equal("first"))

			sess.SetDraft("second")
			_, ok = sess.BeginSubmit()
			Expect(ok).To(BeFalse())
			Expect(sess.Draft()).To(Equal("second"))
			Expect(sess.Messages()).To(HaveLen(1))

			sess.SettleQuery("reply", nil)
			Expect(sess.PendingResponse()).To(BeFalse())
		})

		It("sends /followup prompts unchanged", func() {
			sess.SetDraft("/followup fix typo")
			sess.Submit(ctx)

			Expect(backend.prompts).To(Equal([]string{"/followup fix typo"}))
		})
	})

	Describe("follow-up flag", func() {
		It("tracks the /followup prefix while typing", func() {
			sess.SetDraft("/follow")
			Expect(sess.FollowUp()).To(BeFalse())

			sess.SetDraft("/followup fix typo")
			Expect(sess.FollowUp()).To(BeTrue())

			sess.SetDraft(" /followup")
			Expect(sess.FollowUp()).To(BeFalse())
		})

		It("resets on submission when the request succeeds", func() {
			sess.SetDraft("/followup fix typo")
			sess.Submit(ctx)
			Expect(sess.FollowUp()).To(BeFalse())
		})

		It("resets on submission when the request fails", func() {
			backend.queryFn = func(context.Context, string) (string, error) {
				return "", errors.New("down")
			}
			sess.SetDraft("/followup fix typo")
			sess.Submit(ctx)
			Expect(sess.FollowUp()).To(BeFalse())
		})
	})

	Describe("upload", func() {
		var pdfPath string

		BeforeEach(func() {
			pdfPath = filepath.Join(GinkgoT().TempDir(), "report.pdf")
			Expect(os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644)).To(Succeed())
		})

		It("is a no-op without a selection", func() {
			_, ok := sess.Upload(ctx)

			Expect(ok).To(BeFalse())
			Expect(backend.count("send")).To(Equal(0))
			Expect(sess.Messages()).To(BeEmpty())
		})

		It("reports a successful upload", func() {
			var gotName string
			var gotData []byte
			var pendingDuring bool
			backend.sendFn = func(_ context.Context, name string, data []byte) error {
				gotName, gotData = name, data
				pendingDuring = sess.PendingUpload()
				return nil
			}

			Expect(sess.SelectFile(pdfPath)).To(BeTrue())
			msg, ok := sess.Upload(ctx)

			Expect(ok).To(BeTrue())
			Expect(pendingDuring).To(BeTrue())
			Expect(gotName).To(Equal("report.pdf"))
			Expect(string(gotData)).To(Equal("%PDF-1.4"))

			Expect(sess.Messages()).To(HaveLen(1))
			Expect(msg.Kind).To(Equal(conversation.KindSystem))
			Expect(msg.Content).To(Equal("Successfully uploaded report.pdf"))
			Expect(sess.PendingUpload()).To(BeFalse())
			Expect(sess.Selected()).To(BeEmpty())
		})

		It("reports a failed upload", func() {
			backend.sendFn = func(context.Context, string, []byte) error {
				return errors.New("backend returned 500")
			}

			sess.SelectFile(pdfPath)
			msg, ok := sess.Upload(ctx)

			Expect(ok).To(BeTrue())
			Expect(sess.Messages()).To(HaveLen(1))
			Expect(msg.Kind).To(Equal(conversation.KindError))
			Expect(msg.Content).To(Equal("Failed to upload report.pdf"))
			Expect(sess.PendingUpload()).To(BeFalse())
			Expect(sess.Selected()).To(BeEmpty())
		})

		It("reports an unreadable file as a failed upload", func() {
			sess.SelectFile(filepath.Join(GinkgoT().TempDir(), "missing.pdf"))
			msg, _ := sess.Upload(ctx)

			Expect(msg.Content).To(Equal("Failed to upload missing.pdf"))
			Expect(backend.count("send")).To(Equal(0))
			Expect(sess.Selected()).To(BeEmpty())
		})

		It("refuses a new selection while an upload is pending", func() {
			sess.SelectFile(pdfPath)
			path, ok := sess.BeginUpload()
			Expect(ok).To(BeTrue())
			Expect(path).To(Equal(pdfPath))

			Expect(sess.SelectFile("/tmp/other.pdf")).To(BeFalse())
			_, ok = sess.BeginUpload()
			Expect(ok).To(BeFalse())

			sess.SettleUpload(path, nil)
			Expect(sess.PendingUpload()).To(BeFalse())
			Expect(sess.SelectFile("/tmp/other.pdf")).To(BeTrue())
		})

		It("runs independently of a pending prompt", func() {
			sess.SetDraft("hello")
			_, ok := sess.BeginSubmit()
			Expect(ok).To(BeTrue())

			sess.SelectFile(pdfPath)
			msg, ok := sess.Upload(ctx)
			Expect(ok).To(BeTrue())
			Expect(msg.Kind).To(Equal(conversation.KindSystem))
			Expect(sess.PendingResponse()).To(BeTrue())

			sess.SettleQuery("reply", nil)
			kinds := []conversation.Kind{}
			for _, m := range sess.Messages() {
				kinds = append(kinds, m.Kind)
			}
			Expect(kinds).To(Equal([]conversation.Kind{
				conversation.KindUser, conversation.KindSystem, conversation.KindAssistant,
			}))
		})
	})
})
