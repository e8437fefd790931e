package prompt

import (
	"context"
	"slices"
	"time"
)

// Mode selects the generation template set.
type Mode string

const (
	ModeLong  Mode = "long"
	ModeShort Mode = "short"
)

// ParseMode normalizes a request flag. Empty selects the long templates.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case "", ModeLong:
		return ModeLong, true
	case ModeShort:
		return ModeShort, true
	default:
		return "", false
	}
}

// Tags lists the visual traits the assistant decided to keep or avoid.
type Tags struct {
	Included    []string `json:"included" jsonschema:"description=Visual traits present in the improved prompt"`
	NotIncluded []string `json:"notIncluded" jsonschema:"description=Traits deliberately left out"`
}

// Record is a persisted prompt generation or revision. Records are never updated.
type Record struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	OriginalPrompt  string    `json:"originalPrompt"`
	ImprovedPrompt  string    `json:"improvedPrompt"`
	MainDifferences string    `json:"mainDifferences"`
	Tags            Tags      `json:"tags"`
	PointOfView     string    `json:"pointOfView"`
	PointOfViews    []string  `json:"pointOfViews"`
	ImageStyle      string    `json:"imageStyle"`
	ImageStyles     []string  `json:"imageStyles"`
	ConversationID  string    `json:"conversationId"`
	Timestamp       time.Time `json:"timestamp"`
}

// Clone returns a copy that shares no slices with r.
func (r *Record) Clone() *Record {
	out := *r
	out.Tags = Tags{
		Included:    slices.Clone(r.Tags.Included),
		NotIncluded: slices.Clone(r.Tags.NotIncluded),
	}
	out.PointOfViews = slices.Clone(r.PointOfViews)
	out.ImageStyles = slices.Clone(r.ImageStyles)
	return &out
}

// EffectivePrompt is the text sent to the image model.
func (r *Record) EffectivePrompt() string {
	if r.ImprovedPrompt != "" {
		return r.ImprovedPrompt
	}
	return r.OriginalPrompt
}

// GenerateRequest asks the assistant to improve a free-form prompt.
type GenerateRequest struct {
	Prompt         string
	ConversationID string
	Mode           Mode
}

// RevisionRequest asks the assistant to rewrite a prompt under constraints.
type RevisionRequest struct {
	Prompt         string   `json:"prompt"`
	TagsToInclude  []string `json:"tagsToInclude"`
	TagsToExclude  []string `json:"tagsToExclude"`
	PointOfView    string   `json:"pointOfView,omitempty"`
	ImageStyle     string   `json:"imageStyle,omitempty"`
	ConversationID string   `json:"-"`
}

// RevisionResult is what the assistant returns for a revision.
type RevisionResult struct {
	RevisedPrompt    string `json:"revisedPrompt" jsonschema:"description=The rewritten image prompt"`
	SummaryOfChanges string `json:"summaryOfChanges" jsonschema:"description=Short explanation of what changed"`
}

// Revision is a persisted revision result.
type Revision struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	RevisionResult
}

// generatedPrompt is the object the assistant returns for a generation.
type generatedPrompt struct {
	ImprovedPrompt  string   `json:"improvedPrompt" jsonschema:"description=The improved image prompt"`
	MainDifferences string   `json:"mainDifferences" jsonschema:"description=What was changed compared to the user prompt"`
	Tags            Tags     `json:"tags"`
	PointOfViews    []string `json:"pointOfViews" jsonschema:"description=Candidate camera points of view ordered best first"`
	ImageStyles     []string `json:"imageStyles" jsonschema:"description=Candidate artistic styles ordered best first"`
}

// Repository persists prompt records.
type Repository interface {
	CreatePrompt(ctx context.Context, record *Record) error
	GetPrompt(ctx context.Context, id string) (*Record, error)
}
