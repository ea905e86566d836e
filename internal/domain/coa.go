package domain

import "time"

// COAResult is one test-result line captured in a certificate snapshot.
type COAResult struct {
	TestType    string `json:"test_type"`
	ResultValue string `json:"result_value"`
	Unit        string `json:"unit,omitempty"`
	Method      string `json:"method,omitempty"`
	Status      string `json:"status"`
}

// COA is a Certificate of Analysis issued for an approved lot. Results
// are snapshotted at issue time so later edits to the lot's test results
// do not alter an issued certificate.
type COA struct {
	ID        int64
	Number    string
	LotID     int64
	IssuedBy  string
	IssuedAt  time.Time
	Results   []COAResult
	CreatedAt time.Time
}
