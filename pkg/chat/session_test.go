package chat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/query"
	"github.com/papercomputeco/sqlchat/pkg/sqlformat"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		asker   *fakeAsker
		session *chat.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		asker = &fakeAsker{sql: "select 1"}
		session = chat.NewSession(chat.NewHandler(asker, upperFormatter{}), transcript.NewLog())
	})

	It("starts enabled, focused and scrolled to the bottom", func() {
		state := session.State()

		Expect(state.InputEnabled).To(BeTrue())
		Expect(state.Focused).To(BeTrue())
		Expect(state.AtBottom).To(BeTrue())
		Expect(state.Bubbles).To(BeEmpty())
	})

	It("adds nothing and asks nothing for whitespace", func() {
		session.SetInput("   ")

		t, err := session.Submit(ctx, "   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeNil())
		Expect(session.Log().Len()).To(Equal(0))
		Expect(asker.calls()).To(Equal(0))
	})

	It("records a user bubble then an assistant bubble", func() {
		t, err := session.Submit(ctx, "select stuff")
		Expect(err).NotTo(HaveOccurred())

		state := session.State()
		Expect(state.Bubbles).To(HaveLen(2))
		Expect(t.Bubbles).To(Equal(state.Bubbles))
		Expect(state.Bubbles[0].Role).To(Equal(transcript.User))
		Expect(state.Bubbles[0].Text).To(Equal("select stuff"))
		Expect(state.Bubbles[1].Role).To(Equal(transcript.Assistant))
		Expect(state.Bubbles[1].HTML).To(Equal("<pre><code>SELECT 1\n</code></pre>"))
		Expect(state.InputValue).To(BeEmpty())
		Expect(state.InputEnabled).To(BeTrue())
		Expect(state.Focused).To(BeTrue())
		Expect(state.AtBottom).To(BeTrue())
	})

	It("escapes the user's question", func() {
		_, err := session.Submit(ctx, "<script>")
		Expect(err).NotTo(HaveOccurred())

		Expect(session.Log().Bubbles()[0].HTML).To(Equal("&lt;script&gt;"))
	})

	It("rejects a second submission while a turn is in flight", func() {
		asker.block = make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			_, err := session.Submit(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
		}()

		Eventually(asker.calls).Should(Equal(1))
		state := session.State()
		Expect(state.InputEnabled).To(BeFalse())
		Expect(state.Focused).To(BeFalse())
		Expect(state.Bubbles).To(HaveLen(1))

		_, err := session.Submit(ctx, "second")
		Expect(err).To(MatchError(chat.ErrBusy))
		Expect(session.Log().Len()).To(Equal(1))

		close(asker.block)
		Eventually(done).Should(BeClosed())
		Expect(session.State().InputEnabled).To(BeTrue())
		Expect(session.Log().Len()).To(Equal(2))
	})

	It("returns only the bubbles of its own turn", func() {
		asker.block = make(chan struct{})
		done := make(chan *chat.Turn, 1)
		go func() {
			defer GinkgoRecover()
			t, err := session.Submit(ctx, "mine")
			Expect(err).NotTo(HaveOccurred())
			done <- t
		}()

		Eventually(asker.calls).Should(Equal(1))
		other := session.Log().Append(transcript.User, "someone else", false)
		close(asker.block)

		var t *chat.Turn
		Eventually(done).Should(Receive(&t))
		Expect(t.Bubbles).To(HaveLen(2))
		Expect(t.Bubbles[0].Text).To(Equal("mine"))
		Expect(t.Bubbles[1].Role).To(Equal(transcript.Assistant))
		Expect(t.Bubbles).NotTo(ContainElement(other))
		Expect(session.Log().Len()).To(Equal(3))
	})

	Context("against an HTTP endpoint", func() {
		var (
			server  *httptest.Server
			handler http.HandlerFunc
		)

		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handler(w, r)
			}))
			formatter, err := sqlformat.New(sqlformat.Options{Dialect: sqlformat.MySQL})
			Expect(err).NotTo(HaveOccurred())
			session = chat.NewSession(
				chat.NewHandler(query.NewClient(server.URL+"/query"), formatter),
				transcript.NewLog(),
			)
		})

		AfterEach(func() {
			server.Close()
		})

		It("renders formatted SQL from a successful response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"sql": "select*from t"}`))
			}

			_, err := session.Submit(ctx, "select stuff")
			Expect(err).NotTo(HaveOccurred())

			bubbles := session.State().Bubbles
			Expect(bubbles).To(HaveLen(2))
			Expect(bubbles[0].Role).To(Equal(transcript.User))
			Expect(bubbles[0].HTML).To(Equal("select stuff"))
			Expect(bubbles[1].Role).To(Equal(transcript.Assistant))
			Expect(bubbles[1].HTML).To(Equal("<pre><code>select\n  *\nfrom\n  t\n</code></pre>"))
		})

		It("shows the status text of a failed response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}

			t, err := session.Submit(ctx, "select stuff")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Err).To(HaveOccurred())

			state := session.State()
			Expect(state.Bubbles).To(HaveLen(2))
			Expect(state.Bubbles[1].Role).To(Equal(transcript.Assistant))
			Expect(state.Bubbles[1].Text).To(ContainSubstring("Internal Server Error"))
			Expect(strings.HasPrefix(state.Bubbles[1].Text, chat.DefaultErrorPrefix)).To(BeTrue())
			Expect(state.InputEnabled).To(BeTrue())
			Expect(state.Focused).To(BeTrue())
			Expect(state.AtBottom).To(BeTrue())
		})
	})
})
