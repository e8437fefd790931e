package recordrepo

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/database/entities"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/jsonvalue"
)

func toJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func fromJSON[T any](raw datatypes.JSON) T {
	var out T
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func promptToEntity(r *prompt.Record) entities.PromptRecord {
	return entities.PromptRecord{
		ID:              r.ID,
		Username:        r.Username,
		OriginalPrompt:  r.OriginalPrompt,
		ImprovedPrompt:  r.ImprovedPrompt,
		MainDifferences: r.MainDifferences,
		Tags:            toJSON(r.Tags),
		PointOfView:     r.PointOfView,
		PointOfViews:    toJSON(r.PointOfViews),
		ImageStyle:      r.ImageStyle,
		ImageStyles:     toJSON(r.ImageStyles),
		ConversationID:  r.ConversationID,
		Timestamp:       r.Timestamp.UTC(),
	}
}

func promptFromEntity(e entities.PromptRecord) *prompt.Record {
	return &prompt.Record{
		ID:              e.ID,
		Username:        e.Username,
		OriginalPrompt:  e.OriginalPrompt,
		ImprovedPrompt:  e.ImprovedPrompt,
		MainDifferences: e.MainDifferences,
		Tags:            fromJSON[prompt.Tags](e.Tags),
		PointOfView:     e.PointOfView,
		PointOfViews:    fromJSON[[]string](e.PointOfViews),
		ImageStyle:      e.ImageStyle,
		ImageStyles:     fromJSON[[]string](e.ImageStyles),
		ConversationID:  e.ConversationID,
		Timestamp:       e.Timestamp.UTC(),
	}
}

func imageToEntity(r *image.Record) entities.ImageRecord {
	return entities.ImageRecord{
		ID:              r.ID,
		Username:        r.Username,
		HasError:        r.HasError,
		Timestamp:       r.Timestamp.UTC(),
		RequestPayload:  toJSON(r.RequestPayload),
		ResponsePayload: toJSON(r.ResponsePayload),
		PromptID:        r.Prompt.ID,
		Prompt:          r.Prompt.Prompt,
		URL:             r.Data.URL,
		SmallURL:        r.Data.SmallURL,
		MediumURL:       r.Data.MediumURL,
		LargeURL:        r.Data.LargeURL,
	}
}

func imageFromEntity(e entities.ImageRecord) *image.Record {
	return &image.Record{
		ID:              e.ID,
		Username:        e.Username,
		Timestamp:       e.Timestamp.UTC(),
		RequestPayload:  jsonvalue.FromRaw(e.RequestPayload),
		ResponsePayload: jsonvalue.FromRaw(e.ResponsePayload),
		Prompt:          image.PromptRef{ID: e.PromptID, Prompt: e.Prompt},
		HasError:        e.HasError,
		Data: image.Data{
			URL:       e.URL,
			SmallURL:  e.SmallURL,
			MediumURL: e.MediumURL,
			LargeURL:  e.LargeURL,
		},
	}
}

func chatToEntity(r *chat.Record) entities.ChatRecord {
	return entities.ChatRecord{
		ID:           r.ID,
		Username:     r.Username,
		TimestampUTC: r.TimestampUTC.UTC(),
		Request:      toJSON(r.Request),
		Response:     toJSON(r.Response),
		Error:        r.Error,
	}
}
