package model

import "time"

// QuizResult is a questionnaire the user filled in as a form, outside chat.
type QuizResult struct {
	ID       uint      `gorm:"primaryKey" json:"_id"`
	UserID   uint      `gorm:"not null;index:idx_quiz_user_date,priority:1" json:"userId"`
	QuizType string    `gorm:"size:64;not null" json:"quizType"`
	Score    int       `gorm:"not null" json:"score"`
	Remark   string    `gorm:"size:255;not null" json:"remark"`
	Date     time.Time `gorm:"not null;index:idx_quiz_user_date,priority:2" json:"date"`
}
