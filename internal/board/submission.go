package board

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is a visitor's suggestion from the public view.
type Submission struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Kind        Kind      `json:"type" validate:"required,oneof=movie tv music book"`
	Description string    `json:"description" validate:"required"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewSubmission trims the form fields, validates them and stamps the entry.
func NewSubmission(title string, kind Kind, description, email string, now time.Time) (Submission, error) {
	s := Submission{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Kind:        kind,
		Description: strings.TrimSpace(description),
		Email:       strings.TrimSpace(email),
		CreatedAt:   now.UTC(),
	}
	if err := validate.Struct(s); err != nil {
		return Submission{}, formatValidationError(err)
	}
	return s, nil
}
