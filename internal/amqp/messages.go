package amqp

import (
	"encoding/json"
	"time"
)

// ContributionRecordedMessage announces a stored contribution. It carries
// only the ID; consumers read the full record from the database.
type ContributionRecordedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewContributionRecordedMessage(id int64) *ContributionRecordedMessage {
	return &ContributionRecordedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ContributionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ContributionRecordedMessageFromJSON(data []byte) (*ContributionRecordedMessage, error) {
	var msg ContributionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
