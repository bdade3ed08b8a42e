// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import "time"

// Worker is a person who logs time. Names are unique.
type Worker struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// Project is a construction site. Names are unique and double as the
// photo folder name.
type Project struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"uniqueIndex;not null"`
	Photos []Photo
}

// Photo stores the relative path of an uploaded image.
type Photo struct {
	ID        uint   `gorm:"primaryKey"`
	URL       string `gorm:"uniqueIndex;not null"`
	ProjectID uint   `gorm:"index"`
	Project   Project
}

// Record is one worker's time entry for one day on one project.
type Record struct {
	ID          string `gorm:"primaryKey"`
	Date        string `gorm:"not null"`
	WorkerID    uint   `gorm:"index"`
	Worker      Worker
	ProjectID   uint `gorm:"index"`
	Project     Project
	StartTime   string  `gorm:"not null"`
	BreakStart  string  `gorm:"not null"`
	BreakEnd    string  `gorm:"not null"`
	EndTime     string  `gorm:"not null"`
	Hours       float64 `gorm:"not null"`
	Description *string
	Synced      bool `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
}

// APIKey is a pre-shared key exchanged for a service token.
type APIKey struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"uniqueIndex;not null"`
	Description string
}

// Tables lists every model in migration order.
func Tables() []any {
	return []any{&Worker{}, &Project{}, &Photo{}, &Record{}, &APIKey{}}
}

// PlaceholderAPIKeys are inserted on first start so the key exchange works
// out of the box. Operators are expected to replace them.
var PlaceholderAPIKeys = []APIKey{
	{Key: "your_predefined_api_key_1", Description: "Mobile App Key"},
	{Key: "your_predefined_api_key_2", Description: "Backup Key"},
}
