package notify

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/snapnote/internal/common"
)

// Message is the JSON payload shown by the receiving device.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewSyncMessage composes the notification for a sync run that delivered
// count notes.
func NewSyncMessage(count int) Message {
	body := "Sync complete"
	if count > 0 {
		body = fmt.Sprintf("Synced %d notes", count)
	}
	return Message{Title: common.NotificationTitle, Body: body}
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
