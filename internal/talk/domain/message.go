package domain

import "time"

type ID string

// Message is one directed communication between two users. SentAt is
// assigned by the database at insert time and never changes afterwards;
// only the demo seeder supplies explicit timestamps, through a separate
// bulk-insert path.
type Message struct {
	ID         ID
	SenderID   string
	ReceiverID string
	Body       string
	SentAt     time.Time
}

// Friend is one row of the friends ranking: a user other than the viewer
// annotated with the time of the most recent message exchanged in either
// direction. LastTalkAt is nil when the two have never talked.
type Friend struct {
	UserID     string
	Username   string
	AvatarPath *string
	LastTalkAt *time.Time
}
