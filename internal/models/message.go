package models

/** --------------------ENTITIES-------------------- */
// Message is one row of the append-only record set. Room creation markers
// share the shape and carry an empty Message.
type Message struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID   string `gorm:"not null;index" json:"room_id"`
	RoomName string `gorm:"not null" json:"room_name"`
	Message  string `gorm:"not null" json:"message"`
}

func (Message) TableName() string {
	return "messages"
}

/** -------------------- DTOs -------------------- */
// Room is a distinct (room_id, room_name) pair known to the store.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pair renders the room as the two-element descriptor used by GET /rooms.
func (r Room) Pair() [2]string {
	return [2]string{r.ID, r.Name}
}

// CreateRoomRequest is the body of POST /add_room. Name must be present but
// may be empty.
type CreateRoomRequest struct {
	Name *string `json:"name" example:"Lobby"`
}

// MessageRecord is the JSON value published to the message stream for every
// persisted message.
type MessageRecord struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Text     string `json:"text"`
}
