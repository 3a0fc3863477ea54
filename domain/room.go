package domain

import "time"

// Room is the durable directory record of a numbered room. It is distinct
// from live room presence, which only exists while members are connected.
type Room struct {
	ID           RoomID    `json:"id"`
	Number       int       `json:"roomNumber"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedBy    UserID    `json:"createdBy"`
	Participants []UserID  `json:"participants"`
	IsPrivate    bool      `json:"isPrivate"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports durable membership, not live presence.
func (r Room) HasParticipant(userID UserID) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
