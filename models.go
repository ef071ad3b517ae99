package main

import (
	"time"
)

const (
	tableQuestions = "questions"
	tableStudents  = "students"
)

// --- Participant (client session) ---

type Participant struct {
	ID        uint    `gorm:"primaryKey"`
	PublicID  string  `gorm:"uniqueIndex;size:36;not null"` // UUID stored in the session cookie
	Name      *string // nil until the participant enters the forum
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the name the participant entered the forum with, or "".
func (p *Participant) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}

// --- Open questions ---

type Question struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"` // asker, matched to Student.Name by value
	Question  string    `gorm:"not null" json:"question"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

// --- Scores ---

// Student is a running participation tally. Name is the natural key but is
// deliberately not unique at the table level.
type Student struct {
	ID                string `gorm:"primaryKey;size:36" json:"id"`
	Name              string `gorm:"index;not null" json:"name"`
	QuestionsAnswered int    `gorm:"not null;default:0" json:"questions_answered"`
}
