package engine

import (
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

// Record converts a result into its persisted form. The run ID is left empty
// for storage to assign.
func (r *Result) Record(source string) service.RunRecord {
	msgs := r.Table.Messages()
	classes := r.Table.Classifications()

	intents := make([]model.IntentRecord, len(msgs))
	for i, msg := range msgs {
		intents[i] = model.IntentRecord{
			MessageHash:   msg.Hash(),
			Intent:        classes[i].Intent,
			MentionedName: classes[i].MentionedName,
			Index:         i,
			Confidence:    classes[i].Confidence,
		}
	}

	counts := make(map[model.Intent]int, len(r.Stats.IntentCounts))
	for intent, n := range r.Stats.IntentCounts {
		counts[intent] = n
	}

	return service.RunRecord{
		Run: &model.Run{
			StartedAt:      r.StartedAt,
			Source:         source,
			IntentCounts:   counts,
			MessageCount:   len(msgs),
			DealCount:      len(r.Deals),
			RejectionCount: len(r.Rejections),
		},
		Intents:    intents,
		Deals:      r.Deals,
		Rejections: r.Rejections,
	}
}
