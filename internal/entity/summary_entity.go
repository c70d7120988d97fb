package entity

type Summary struct {
	SessionId uint
	Summary   string
	Title     string
}
