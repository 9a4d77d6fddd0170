package chat_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/query"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

// recordingUI collects applied effects as readable strings.
type recordingUI struct {
	calls []string
}

func (u *recordingUI) AppendBubble(role transcript.Role, text string, markdown bool) {
	u.calls = append(u.calls, "append:"+string(role))
}

func (u *recordingUI) ClearInput() { u.calls = append(u.calls, "clear") }

func (u *recordingUI) SetInputEnabled(enabled bool) {
	if enabled {
		u.calls = append(u.calls, "enable")
		return
	}
	u.calls = append(u.calls, "disable")
}

func (u *recordingUI) FocusInput()     { u.calls = append(u.calls, "focus") }
func (u *recordingUI) ScrollToBottom() { u.calls = append(u.calls, "scroll") }

var cleanup = []chat.Effect{
	chat.SetInputEnabled{Enabled: true},
	chat.FocusInput{},
	chat.ScrollToBottom{},
}

var _ = Describe("Handler", func() {
	var (
		ctx   context.Context
		asker *fakeAsker
	)

	BeforeEach(func() {
		ctx = context.Background()
		asker = &fakeAsker{sql: "select 1"}
	})

	Describe("Begin", func() {
		It("ignores blank input", func() {
			h := chat.NewHandler(asker, upperFormatter{})

			for _, input := range []string{"", "   ", "\t\n"} {
				t, effects := h.Begin(input)
				Expect(t).To(BeNil())
				Expect(effects).To(BeEmpty())
			}
		})

		It("appends the trimmed question and locks the input", func() {
			h := chat.NewHandler(asker, upperFormatter{})

			t, effects := h.Begin("  how many users?  ")

			Expect(t.Question).To(Equal("how many users?"))
			Expect(effects).To(Equal([]chat.Effect{
				chat.AppendBubble{Role: transcript.User, Text: "how many users?"},
				chat.ClearInput{},
				chat.SetInputEnabled{Enabled: false},
			}))
		})

		It("does not ask the endpoint", func() {
			chat.NewHandler(asker, upperFormatter{}).Begin("q")

			Expect(asker.calls()).To(Equal(0))
		})
	})

	Describe("Complete", func() {
		It("appends the formatted SQL as a fenced markdown bubble", func() {
			h := chat.NewHandler(asker, upperFormatter{})
			t, _ := h.Begin("q")

			effects := h.Complete(ctx, t)

			Expect(effects).To(Equal(append([]chat.Effect{
				chat.AppendBubble{Role: transcript.Assistant, Text: "```sql\nSELECT 1\n```", Markdown: true},
			}, cleanup...)))
			Expect(t.SQL).To(Equal("select 1"))
			Expect(t.FormattedSQL).To(Equal("SELECT 1"))
			Expect(t.HTML).To(Equal("<pre><code>SELECT 1\n</code></pre>"))
			Expect(t.Err).NotTo(HaveOccurred())
		})

		It("strips a fence the endpoint left around the SQL", func() {
			asker.sql = "```sql\nselect 1\n```"
			h := chat.NewHandler(asker, upperFormatter{})
			t, _ := h.Begin("q")

			h.Complete(ctx, t)

			Expect(t.FormattedSQL).To(Equal("SELECT 1"))
		})

		It("uses the configured fence language", func() {
			h := chat.NewHandler(asker, upperFormatter{}, chat.WithFenceLanguage("mysql"))
			t, _ := h.Begin("q")

			h.Complete(ctx, t)

			Expect(t.Reply).To(Equal("```mysql\nSELECT 1\n```"))
		})

		It("reports a RequestFailure by its status text", func() {
			asker.err = &query.RequestFailure{StatusCode: 500, StatusText: "Internal Server Error"}
			h := chat.NewHandler(asker, upperFormatter{})
			t, _ := h.Begin("q")

			effects := h.Complete(ctx, t)

			Expect(effects).To(Equal(append([]chat.Effect{
				chat.AppendBubble{Role: transcript.Assistant, Text: chat.DefaultErrorPrefix + "Internal Server Error"},
			}, cleanup...)))

			var failure *query.RequestFailure
			Expect(errors.As(t.Err, &failure)).To(BeTrue())
		})

		It("wraps other failures as UnhandledFailure", func() {
			asker.err = errNetwork
			h := chat.NewHandler(asker, upperFormatter{}, chat.WithErrorPrefix("error: "))
			t, _ := h.Begin("q")

			effects := h.Complete(ctx, t)

			Expect(effects[0]).To(Equal(chat.AppendBubble{Role: transcript.Assistant, Text: "error: connection refused"}))
			var failure *chat.UnhandledFailure
			Expect(errors.As(t.Err, &failure)).To(BeTrue())
			Expect(errors.Is(t.Err, errNetwork)).To(BeTrue())
		})

		It("escapes the error message", func() {
			asker.err = errors.New("<b>bad</b>")
			h := chat.NewHandler(asker, upperFormatter{}, chat.WithErrorPrefix(""))
			t, _ := h.Begin("q")

			h.Complete(ctx, t)

			Expect(t.HTML).To(Equal("&lt;b&gt;bad&lt;/b&gt;"))
		})

		It("catches formatter errors inside the same boundary", func() {
			h := chat.NewHandler(asker, upperFormatter{err: errors.New("bad sql")}, chat.WithErrorPrefix(""))
			t, _ := h.Begin("q")

			effects := h.Complete(ctx, t)

			Expect(effects).To(Equal(append([]chat.Effect{
				chat.AppendBubble{Role: transcript.Assistant, Text: "format sql: bad sql"},
			}, cleanup...)))
		})

		It("recovers a formatter panic and still cleans up", func() {
			h := chat.NewHandler(asker, upperFormatter{panic: true}, chat.WithErrorPrefix(""))
			t, _ := h.Begin("q")

			var effects []chat.Effect
			Expect(func() { effects = h.Complete(ctx, t) }).NotTo(Panic())

			Expect(effects).To(Equal(append([]chat.Effect{
				chat.AppendBubble{Role: transcript.Assistant, Text: "formatter exploded"},
			}, cleanup...)))
			var failure *chat.UnhandledFailure
			Expect(errors.As(t.Err, &failure)).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("is a no-op for blank input", func() {
			t, effects := chat.NewHandler(asker, upperFormatter{}).Run(ctx, " ")

			Expect(t).To(BeNil())
			Expect(effects).To(BeEmpty())
			Expect(asker.calls()).To(Equal(0))
		})

		It("applies in the order of a whole turn", func() {
			_, effects := chat.NewHandler(asker, upperFormatter{}).Run(ctx, "q")

			ui := &recordingUI{}
			chat.Apply(ui, effects...)

			Expect(ui.calls).To(Equal([]string{
				"append:user", "clear", "disable",
				"append:assist", "enable", "focus", "scroll",
			}))
		})
	})
})
