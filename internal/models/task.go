package models

import "time"

// Task is a to-do item attached to a date
type Task struct {
	ID        int64     `json:"id"`
	Date      Date      `json:"date"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
