package dto

type SyncReportResponse struct {
	Remote   int `json:"remote"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
