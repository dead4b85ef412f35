package engine

import (
	"fmt"
	"strings"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
)

// ValidateMessages checks the structural guarantees every stage relies on:
// required fields are present and timestamps never decrease within a date.
func ValidateMessages(msgs []model.Message) error {
	for i, msg := range msgs {
		switch {
		case msg.Timestamp.IsZero():
			return fmt.Errorf("%w: row %d has no timestamp", common.ErrInvalidMessage, i)
		case strings.TrimSpace(msg.Bank) == "":
			return fmt.Errorf("%w: row %d has no bank", common.ErrInvalidMessage, i)
		case strings.TrimSpace(msg.TraderName) == "":
			return fmt.Errorf("%w: row %d has no trader name", common.ErrInvalidMessage, i)
		}

		if i == 0 {
			continue
		}
		prev := msgs[i-1]
		if prev.DateKey() == msg.DateKey() && msg.Timestamp.Before(prev.Timestamp) {
			return fmt.Errorf("%w: row %d at %s precedes row %d at %s",
				common.ErrUnorderedMessages, i, msg.Clock(), i-1, prev.Clock())
		}
	}
	return nil
}
