// Package study runs the side effects behind each user action (PDF
// extraction, generation, archiving, notification) and folds the results
// into the session state through session.Reduce.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdfquiz/internal/generate"
	"pdfquiz/internal/logger"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/pdftext"
	"pdfquiz/internal/quiz"
	"pdfquiz/internal/session"

	"github.com/google/uuid"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrNoSummary       = errors.New("no summary has been generated")
	ErrDocumentChanged = errors.New("the document changed while generating, please generate again")
	ErrUnknownDownload = errors.New("unknown download")
)

// Archiver stores generated artifacts and returns a public URL. *r2.Client
// satisfies it, including as a nil pointer.
type Archiver interface {
	Enabled() bool
	UploadArtifact(ctx context.Context, sessionID, artifactID uuid.UUID, filename string, content []byte) (string, error)
}

// Service applies user actions to stored sessions.
type Service struct {
	store    session.Store
	gen      generate.Generator
	archive  Archiver
	notifier *notify.Discord
	log      *logger.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures optional collaborators.
type Option func(*Service)

// WithArchive uploads every generated artifact through a.
func WithArchive(a Archiver) Option { return func(s *Service) { s.archive = a } }

// WithNotifier reports extraction and generation failures to d.
func WithNotifier(d *notify.Discord) Option { return func(s *Service) { s.notifier = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires a Service around a state store and a generator.
func NewService(store session.Store, gen generate.Generator, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		gen:   gen,
		log:   log,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state of the session, or a fresh one.
func (s *Service) State(ctx context.Context, id uuid.UUID) (session.State, error) {
	st, err := session.LoadOrNew(ctx, s.store, id)
	if err != nil {
		return st, fmt.Errorf("load session %s: %w", id, err)
	}
	return st, nil
}

// Upload extracts text from a PDF and makes it the session's document.
// numPages <= 0 selects the default page range for the document.
func (s *Service) Upload(ctx context.Context, id uuid.UUID, fileName string, data []byte, numPages int) (session.State, error) {
	if len(data) == 0 {
		return s.failState(ctx, id, ErrNoFile)
	}

	doc, err := pdftext.Open(data)
	if err != nil {
		s.failed(id, "Upload", err, notify.EmbedField{Name: "File", Value: fileName})
		return s.failState(ctx, id, err)
	}
	total := doc.PageCount()
	if numPages <= 0 {
		numPages = pdftext.DefaultPages(total)
	}
	pages, err := doc.PageTexts()
	if err != nil {
		s.failed(id, "Upload", err, notify.EmbedField{Name: "File", Value: fileName})
		return s.failState(ctx, id, err)
	}

	s.log.Info("pdf extracted", "session_id", id, "file", fileName, "total_pages", total, "num_pages", numPages)
	return s.apply(ctx, id, session.Uploaded{
		FileName:   fileName,
		TotalPages: total,
		NumPages:   numPages,
		Pages:      pages,
	})
}

// UpdateSettings changes the page and question selectors.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, numPages, numQuestions int) (session.State, error) {
	return s.apply(ctx, id, session.SettingsChanged{NumPages: numPages, NumQuestions: numQuestions})
}

// Generate runs action against the session's document and records the
// output. The state is left unchanged when generation fails.
func (s *Service) Generate(ctx context.Context, id uuid.UUID, action session.Action) (session.State, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return st, err
	}
	if _, err := session.ParseAction(string(action)); err != nil {
		return st, err
	}
	if !st.HasDocument() {
		return st, session.ErrNoDocument
	}

	text := generate.Truncate(st.PDFText)
	start := s.now()
	var out string
	switch action {
	case session.ActionMCQ:
		out, err = s.gen.MCQ(ctx, text, st.NumQuestions)
	case session.ActionTrueFalse:
		out, err = s.gen.TrueFalse(ctx, text, st.NumQuestions)
	case session.ActionSummary:
		out, err = s.gen.Summarize(ctx, text, generate.SummarySentences)
	}
	if err != nil {
		s.failed(id, action.Label(), err, notify.EmbedField{Name: "Action", Value: string(action), Inline: true})
		return st, fmt.Errorf("generate %s: %w", action, err)
	}

	if action.IsQuiz() && len(quiz.Parse(out)) == 0 {
		s.log.Warn("generated quiz has no gradable blocks", "session_id", id, "action", action)
	}

	artifactID := s.newID()
	ev := session.Generated{
		ID:     artifactID.String(),
		Action: action,
		Output: out,
		At:     s.now(),
	}
	ev.ArchiveURL = s.archiveArtifact(ctx, id, artifactID, action, out)

	// Settings saved while the generator ran are kept; output for a
	// document that has since been replaced or reset is dropped.
	cur, err := s.State(ctx, id)
	if err != nil {
		return cur, err
	}
	if cur.FileName != st.FileName || cur.PDFText != st.PDFText {
		s.log.Warn("discarding generation for replaced document", "session_id", id, "action", action)
		return cur, ErrDocumentChanged
	}
	next, err := s.applyTo(ctx, id, cur, ev)
	if err != nil {
		return next, err
	}
	s.log.Info("generation completed", "session_id", id, "action", action, "duration", s.now().Sub(start))
	return next, nil
}

// Answer records the choice for question index of the current quiz and
// returns its graded result.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, index int, choice string) (session.State, quiz.Result, error) {
	next, err := s.apply(ctx, id, session.Answered{Index: index, Choice: choice})
	if err != nil {
		return next, quiz.Result{}, err
	}
	card := next.Scorecard()
	return next, card.Results[index], nil
}

// Reset clears the session and removes it from the store.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (session.State, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return session.New(), fmt.Errorf("delete session %s: %w", id, err)
	}
	s.log.Info("session reset", "session_id", id)
	return session.New(), nil
}

// Download returns the latest output for a download kind ("questions" or
// "summary") together with its file name.
func (s *Service) Download(ctx context.Context, id uuid.UUID, kind string) (name, content string, err error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return "", "", err
	}
	switch kind {
	case "questions":
		if st.QuizText == "" {
			return "", "", session.ErrNoQuiz
		}
		return st.QuizAction.DownloadName(), st.QuizText, nil
	case "summary":
		if st.Summary == "" {
			return "", "", ErrNoSummary
		}
		return session.ActionSummary.DownloadName(), st.Summary, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownDownload, kind)
	}
}

func (s *Service) apply(ctx context.Context, id uuid.UUID, ev session.Event) (session.State, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return st, err
	}
	return s.applyTo(ctx, id, st, ev)
}

func (s *Service) applyTo(ctx context.Context, id uuid.UUID, st session.State, ev session.Event) (session.State, error) {
	next, err := session.Reduce(st, ev)
	if err != nil {
		return st, err
	}
	next.UpdatedAt = s.now()
	if err := s.store.Save(ctx, id, next); err != nil {
		return st, fmt.Errorf("save session %s: %w", id, err)
	}
	return next, nil
}

func (s *Service) failState(ctx context.Context, id uuid.UUID, cause error) (session.State, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return st, errors.Join(cause, err)
	}
	return st, cause
}

func (s *Service) archiveArtifact(ctx context.Context, id, artifactID uuid.UUID, action session.Action, out string) string {
	if s.archive == nil || !s.archive.Enabled() {
		return ""
	}
	url, err := s.archive.UploadArtifact(ctx, id, artifactID, action.DownloadName(), []byte(out))
	if err != nil {
		// Archiving is best effort; the generation itself succeeded.
		s.log.Warn("artifact upload failed", "session_id", id, "artifact_id", artifactID, "error", err)
		return ""
	}
	return url
}

func (s *Service) failed(id uuid.UUID, action string, err error, fields ...notify.EmbedField) {
	s.log.Error(action+" failed", "session_id", id, "error", err)
	fields = append(fields, notify.EmbedField{Name: "Session", Value: fmt.Sprintf("`%s`", id), Inline: true})
	s.notifier.Notify(notify.ErrorEmbed(action, err, fields...))
}
