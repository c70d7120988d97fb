package entity

import "time"

type Question struct {
	Id        uint
	SessionId uint
	Question  string
	Answer    string
	Timestamp time.Time
}
