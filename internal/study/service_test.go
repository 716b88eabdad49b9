package study

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pdfquiz/internal/logger"
	"pdfquiz/internal/pdftext"
	"pdfquiz/internal/pdftext/pdftest"
	"pdfquiz/internal/quiz"
	"pdfquiz/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mcq, tf, summary string
	err              error
	gotText          string
	gotN             int
	during           func() // runs inside MCQ, before it returns
}

func (g *stubGenerator) MCQ(_ context.Context, text string, n int) (string, error) {
	g.gotText, g.gotN = text, n
	if g.during != nil {
		g.during()
	}
	return g.mcq, g.err
}

func (g *stubGenerator) TrueFalse(_ context.Context, text string, n int) (string, error) {
	g.gotText, g.gotN = text, n
	return g.tf, g.err
}

func (g *stubGenerator) Summarize(_ context.Context, text string, n int) (string, error) {
	g.gotText, g.gotN = text, n
	return g.summary, g.err
}

type stubArchive struct {
	enabled bool
	err     error
	keys    []string
}

func (a *stubArchive) Enabled() bool { return a.enabled }

func (a *stubArchive) UploadArtifact(_ context.Context, sid, aid uuid.UUID, filename string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := fmt.Sprintf("artifacts/%s/%s/%s", sid, aid, filename)
	a.keys = append(a.keys, key)
	return "https://pub.example.dev/" + key, nil
}

const mcqBlob = "What is the capital of France?\na) Paris\nb) London\nc) Rome\nAnswer: a) Paris\n\nIs water wet?\nAnswer: True"

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestService(t *testing.T, gen *stubGenerator, opts ...Option) (*Service, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	opts = append(opts, WithClock(func() time.Time { return fixedNow }))
	return NewService(store, gen, logger.Nop(), opts...), store
}

// seed stores a session that already holds an extracted document.
func seed(t *testing.T, store session.Store, pages ...string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	st, err := session.Reduce(session.New(), session.Uploaded{
		FileName:   "notes.pdf",
		TotalPages: len(pages),
		NumPages:   len(pages),
		Pages:      pages,
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), id, st))
	return id
}

func TestService_UploadRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, uuid.New(), "empty.pdf", nil, 0)
	assert.ErrorIs(t, err, ErrNoFile)

	st, err := svc.Upload(ctx, uuid.New(), "notes.pdf", []byte("not a pdf"), 0)
	assert.ErrorIs(t, err, pdftext.ErrUnreadable)
	assert.False(t, st.HasDocument())
}

func TestService_GenerateRequiresDocument(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{mcq: mcqBlob})
	_, err := svc.Generate(context.Background(), uuid.New(), session.ActionMCQ)
	assert.ErrorIs(t, err, session.ErrNoDocument)
	assert.Equal(t, "please upload a PDF first", err.Error())
}

func TestService_GenerateUnknownAction(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{})
	id := seed(t, store, "Some text.")
	_, err := svc.Generate(context.Background(), id, session.Action("poem"))
	assert.ErrorIs(t, err, session.ErrUnknownAction)
}

func TestService_GenerateQuizAndAnswer(t *testing.T) {
	gen := &stubGenerator{mcq: mcqBlob}
	archive := &stubArchive{enabled: true}
	svc, store := newTestService(t, gen, WithArchive(archive))
	ctx := context.Background()
	id := seed(t, store, "Paris is the capital of France.")

	st, err := svc.UpdateSettings(ctx, id, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, st.NumQuestions)

	st, err = svc.Generate(ctx, id, session.ActionMCQ)
	require.NoError(t, err)
	assert.Equal(t, 7, gen.gotN)
	assert.Equal(t, "Paris is the capital of France.", gen.gotText)
	assert.Equal(t, mcqBlob, st.QuizText)
	require.Len(t, st.History, 1)
	assert.Equal(t, "### MCQ Generated", st.History[0].Heading())
	assert.Equal(t, fixedNow, st.History[0].CreatedAt)
	require.Len(t, archive.keys, 1)
	assert.Contains(t, archive.keys[0], "/mcq_questions.txt")
	assert.Equal(t, "https://pub.example.dev/"+archive.keys[0], st.History[0].ArchiveURL)

	st, res, err := svc.Answer(ctx, id, 0, "Paris")
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeCorrect, res.Outcome)
	assert.Equal(t, "Paris", st.Answers[0])

	_, res, err = svc.Answer(ctx, id, 1, "False")
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeIncorrect, res.Outcome)
	assert.Equal(t, "True", res.Question.ExpectedAnswer)

	_, _, err = svc.Answer(ctx, id, 5, "True")
	assert.ErrorIs(t, err, session.ErrQuestionIndex)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Answers, 2)
}

func TestService_GenerateFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc, store := newTestService(t, &stubGenerator{err: boom})
	ctx := context.Background()
	id := seed(t, store, "Some text.")
	before, err := store.Load(ctx, id)
	require.NoError(t, err)

	st, err := svc.Generate(ctx, id, session.ActionSummary)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, st)

	after, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_ArchiveFailureIsNotFatal(t *testing.T) {
	archive := &stubArchive{enabled: true, err: errors.New("bucket gone")}
	svc, store := newTestService(t, &stubGenerator{summary: "A summary."}, WithArchive(archive))
	id := seed(t, store, "Some text.")

	st, err := svc.Generate(context.Background(), id, session.ActionSummary)
	require.NoError(t, err)
	assert.Equal(t, "A summary.", st.Summary)
	assert.Empty(t, st.History[0].ArchiveURL)
}

func TestService_Download(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{tf: "Sky is blue.\nAnswer: True", summary: "Short."})
	ctx := context.Background()
	id := seed(t, store, "Some text.")

	_, _, err := svc.Download(ctx, id, "questions")
	assert.ErrorIs(t, err, session.ErrNoQuiz)
	_, _, err = svc.Download(ctx, id, "summary")
	assert.ErrorIs(t, err, ErrNoSummary)
	_, _, err = svc.Download(ctx, id, "slides")
	assert.ErrorIs(t, err, ErrUnknownDownload)

	_, err = svc.Generate(ctx, id, session.ActionTrueFalse)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, id, session.ActionSummary)
	require.NoError(t, err)

	name, content, err := svc.Download(ctx, id, "questions")
	require.NoError(t, err)
	assert.Equal(t, "true_false_questions.txt", name)
	assert.Equal(t, "Sky is blue.\nAnswer: True", content)

	name, content, err = svc.Download(ctx, id, "summary")
	require.NoError(t, err)
	assert.Equal(t, "summary.txt", name)
	assert.Equal(t, "Short.", content)
}

func TestService_Reset(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{})
	ctx := context.Background()
	id := seed(t, store, "Some text.")

	st, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.New(), st)

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_Upload(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{})
	ctx := context.Background()
	id := uuid.New()
	data := pdftest.Build("Alpha page", "Beta page", "Gamma page", "Delta page")

	st, err := svc.Upload(ctx, id, "notes.pdf", data, 0)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", st.FileName)
	assert.Equal(t, 4, st.TotalPages)
	assert.Equal(t, 3, st.NumPages, "defaults to min(3, total)")
	assert.Contains(t, st.PDFText, "Gamma")
	assert.NotContains(t, st.PDFText, "Delta")
	assert.Equal(t, fixedNow, st.UpdatedAt)

	st, err = svc.UpdateSettings(ctx, id, 4, 5)
	require.NoError(t, err)
	assert.Contains(t, st.PDFText, "Delta")

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st.PDFText, stored.PDFText)
}

func TestService_GenerateKeepsConcurrentSettings(t *testing.T) {
	gen := &stubGenerator{mcq: mcqBlob}
	svc, store := newTestService(t, gen)
	ctx := context.Background()
	id := seed(t, store, "Page one.", "Page two.")

	gen.during = func() {
		_, err := svc.UpdateSettings(ctx, id, 2, 9)
		require.NoError(t, err)
	}
	st, err := svc.Generate(ctx, id, session.ActionMCQ)
	require.NoError(t, err)
	assert.Equal(t, 9, st.NumQuestions)
	assert.Equal(t, mcqBlob, st.QuizText)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.NumQuestions)
	assert.Len(t, stored.History, 1)
}

func TestService_GenerateDropsOutputForReplacedDocument(t *testing.T) {
	gen := &stubGenerator{mcq: mcqBlob}
	svc, store := newTestService(t, gen)
	ctx := context.Background()
	id := seed(t, store, "Old notes.")

	gen.during = func() {
		_, err := svc.Upload(ctx, id, "new.pdf", pdftest.Build("Fresh notes"), 0)
		require.NoError(t, err)
	}
	st, err := svc.Generate(ctx, id, session.ActionMCQ)
	assert.ErrorIs(t, err, ErrDocumentChanged)
	assert.Equal(t, "new.pdf", st.FileName)
	assert.Empty(t, st.QuizText)
	assert.Empty(t, st.History)
}
