package notifications

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/andalib/andalib-backend/pkg/enums"
)

// Event is one fan-out request: every admin receives an identical copy.
type Event struct {
	Type     enums.NotificationType
	Title    string
	Message  string
	Metadata map[string]any
}

func (e Event) validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid notification type %q", e.Type)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("notification title required")
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Errorf("notification message required")
	}
	return nil
}

func (e Event) metadataJSON() (datatypes.JSON, error) {
	if len(e.Metadata) == 0 {
		return datatypes.JSON("{}"), nil
	}
	raw, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal notification metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}
