// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStatus is the moderation state of a customer question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
	QuestionRejected QuestionStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionPending, QuestionAnswered, QuestionRejected:
		return true
	}
	return false
}

const (
	// MaxPendingQuestions is how many unanswered questions a category may
	// hold before new ones are refused.
	MaxPendingQuestions = 3
	// MaxAnswerURLs caps the answers attached to one question.
	MaxAnswerURLs = 2
	// MaxQuestionText is the longest question accepted, in characters.
	MaxQuestionText = 1000
)

// Question is a customer question about a category, answered by staff with
// links to video or article answers.
type Question struct {
	ID            uuid.UUID      `json:"id"`
	Text          string         `json:"text"`
	CategoryID    uuid.UUID      `json:"categoryId"`
	Status        QuestionStatus `json:"status"`
	UserID        uuid.UUID      `json:"userId"`
	AnswerURLs    []string       `json:"answerUrls"`
	RejectComment string         `json:"rejectComment,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// QuestionFilter narrows a question listing. Zero fields match everything.
type QuestionFilter struct {
	Status     QuestionStatus
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
}
