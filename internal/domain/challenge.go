package domain

import "time"

// ChallengeID is the fixed primary key of the singleton challenge
// row. There is exactly one live challenge at a time; posting a new
// one overwrites it.
const ChallengeID uint = 1

type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeVoting    ChallengeStatus = "voting"
	ChallengeCompleted ChallengeStatus = "completed"
)

type Challenge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MessageID   string          `gorm:"size:32" json:"message_id"`
	Title       string          `gorm:"size:256;not null" json:"title"`
	Description string          `json:"description"`
	Status      ChallengeStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Submission struct {
	MessageID   string    `gorm:"primaryKey;size:32" json:"message_id"`
	AuthorID    string    `gorm:"size:32;index;not null" json:"author_id"`
	Content     string    `json:"content"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"size:32;index:idx_vote_ballot;not null" json:"message_id"`
	VoterID   string    `gorm:"size:32;index:idx_vote_ballot;not null" json:"voter_id"`
	Rank      Rank      `gorm:"not null" json:"rank"`
	VotedAt   time.Time `json:"voted_at"`
}
