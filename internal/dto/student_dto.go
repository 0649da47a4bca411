package dto

import "github.com/campuspass/campuspass-api/internal/models"

// StudentResponse is the roster entry shown in the issuance picker.
type StudentResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// NewStudentResponseSlice maps student models to their response form.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, StudentResponse{
			ID:         student.ID,
			Name:       student.Name,
			Email:      student.Email,
			Department: student.Department,
		})
	}
	return responses
}
