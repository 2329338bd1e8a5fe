package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/platform/richtext"
)

var (
	errReviewEditorRequired    = errors.New("review service: editor is required")
	errReviewSubmitterRequired = errors.New("review service: submitter is required")
	errReviewBoardRequired     = errors.New("review service: board is required")

	// ErrReviewValidation indicates one or more form fields are out of
	// bounds. Errors wrapping it carry FieldErrors.
	ErrReviewValidation = errors.New("review service: invalid fields")
	// ErrReviewSubmitInFlight indicates a submission is already running for
	// this form.
	ErrReviewSubmitInFlight = errors.New("review service: submission in flight")
	// ErrReviewSubmission indicates the external review API rejected or
	// failed the submission. The draft is preserved.
	ErrReviewSubmission = errors.New("review service: submission failed")
)

const (
	reviewNameMaxLen    = 20
	reviewEmailMinLen   = 6
	reviewEmailMaxLen   = 50
	reviewMessageMaxLen = 100
)

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// ValidationError carries per-field messages alongside ErrReviewValidation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("review service: invalid fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrReviewValidation }

// ValidateReviewFields checks all three fields against their length bounds.
// Lengths count characters, not bytes. All fields are required.
func ValidateReviewFields(fields ReviewFields) error {
	errs := FieldErrors{}

	name := utf8.RuneCountInString(fields.Name)
	if name < 1 || name > reviewNameMaxLen {
		errs["name"] = fmt.Sprintf("name must be between 1 and %d characters", reviewNameMaxLen)
	}
	email := utf8.RuneCountInString(fields.Email)
	if email < reviewEmailMinLen || email > reviewEmailMaxLen {
		errs["email"] = fmt.Sprintf("email must be between %d and %d characters", reviewEmailMinLen, reviewEmailMaxLen)
	}
	message := utf8.RuneCountInString(fields.Message)
	if message < 1 || message > reviewMessageMaxLen {
		errs["reviewText"] = fmt.Sprintf("review text must be between 1 and %d characters", reviewMessageMaxLen)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ReviewBoard holds the displayed review list for one product, always sorted
// newest first. Appends re-sort in place rather than re-fetching.
type ReviewBoard struct {
	mu      sync.Mutex
	reviews []Review
}

// NewReviewBoard seeds the board with the initially shipped reviews.
func NewReviewBoard(initial []Review) *ReviewBoard {
	reviews := make([]Review, len(initial))
	copy(reviews, initial)
	domain.SortReviewsNewestFirst(reviews)
	return &ReviewBoard{reviews: reviews}
}

// Append inserts an accepted review and restores newest-first order.
func (b *ReviewBoard) Append(review Review) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reviews = append(b.reviews, review)
	domain.SortReviewsNewestFirst(b.reviews)
}

// Sorted returns a copy of the displayed list, newest first.
func (b *ReviewBoard) Sorted() []Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Review, len(b.reviews))
	copy(out, b.reviews)
	return out
}

// Len reports how many reviews the board displays.
func (b *ReviewBoard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reviews)
}

// ReviewFormDeps wires the markup codec, the external submitter, and the
// board the form appends to on success.
type ReviewFormDeps struct {
	Editor    Editor
	Submitter ReviewSubmitter
	Board     *ReviewBoard
	Logger    func(context.Context, string, map[string]any)
}

// ReviewForm is the draft-and-submit state for one product's review form.
// The message field is authored as a rich-text draft and mirrored into plain
// text for validation and submission.
type ReviewForm struct {
	productID string
	editor    Editor
	submitter ReviewSubmitter
	board     *ReviewBoard
	logger    func(context.Context, string, map[string]any)

	mu         sync.Mutex
	name       string
	email      string
	message    string
	draft      richtext.Document
	submitting bool
}

// NewReviewForm constructs a form for the product enforcing dependency
// validation.
func NewReviewForm(productID string, deps ReviewFormDeps) (*ReviewForm, error) {
	if deps.Editor == nil {
		return nil, errReviewEditorRequired
	}
	if deps.Submitter == nil {
		return nil, errReviewSubmitterRequired
	}
	if deps.Board == nil {
		return nil, errReviewBoardRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &ReviewForm{
		productID: productID,
		editor:    deps.Editor,
		submitter: deps.Submitter,
		board:     deps.Board,
		logger:    logger,
	}, nil
}

// SetName records the name field.
func (f *ReviewForm) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
}

// SetEmail records the email field.
func (f *ReviewForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

// OnDraftChange takes the current editor draft and mirrors its rendered
// markup into the message field, so the submitted text always reflects the
// latest keystroke.
func (f *ReviewForm) OnDraftChange(draft richtext.Document) error {
	markup, err := f.editor.Render(draft)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
	f.message = markup
	return nil
}

// SetMessageMarkup seeds the draft from stored markup, for edit-existing
// flows.
func (f *ReviewForm) SetMessageMarkup(markup string) error {
	draft, err := f.editor.Parse(markup)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
	f.message = markup
	return nil
}

// Fields returns the current form fields.
func (f *ReviewForm) Fields() ReviewFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ReviewFields{Name: f.name, Email: f.email, Message: f.message}
}

// Draft returns the current rich-text draft.
func (f *ReviewForm) Draft() richtext.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Submitting reports whether a submission is in flight.
func (f *ReviewForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates the form, sends it to the external review API, and on
// success clears the form and appends the accepted review to the board. At
// most one submission runs at a time; validation failures never reach the
// API. On failure the fields and draft are preserved so nothing retyped is
// lost.
func (f *ReviewForm) Submit(ctx context.Context) (Review, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Review{}, ErrReviewSubmitInFlight
	}
	fields := ReviewFields{Name: f.name, Email: f.email, Message: f.message}
	if err := ValidateReviewFields(fields); err != nil {
		f.mu.Unlock()
		return Review{}, err
	}
	f.submitting = true
	f.mu.Unlock()

	review, err := f.submitter.CreateReview(ctx, f.productID, fields)
	if err != nil {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.logger(ctx, "review.submit_failed", map[string]any{
			"productID": f.productID,
			"error":     err.Error(),
		})
		return Review{}, fmt.Errorf("%w: %v", ErrReviewSubmission, err)
	}

	f.mu.Lock()
	f.name = ""
	f.email = ""
	f.message = ""
	f.draft = richtext.Document{}
	f.submitting = false
	f.mu.Unlock()

	f.board.Append(review)
	f.logger(ctx, "review.submitted", map[string]any{
		"productID": f.productID,
		"reviewID":  review.ID,
	})
	return review, nil
}
