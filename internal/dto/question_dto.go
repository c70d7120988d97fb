package dto

import "time"

type AskQuestionRequest struct {
	SessionId *uint  `json:"session_id"`
	Question  string `json:"question" validate:"required,max=2000"`
}

type QuestionResponse struct {
	Id        uint      `json:"id,omitempty"`
	SessionId uint      `json:"session_id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Saved     bool      `json:"saved"`
}

type QuestionDayGroup struct {
	Day       string             `json:"day"`
	Questions []QuestionResponse `json:"questions"`
}
