// Package pipeline defines the fixed Kanban board every process moves across.
//
// The board is a flat, ordered list of named columns. Moving a process only
// requires the target name to exist here; there is deliberately no transition
// matrix (a back-office operator may drag a card anywhere).
package pipeline

// The 14 stations of the credit/real-estate pipeline, in board order.
const (
	ColumnIntake             = "intake"
	ColumnQualification      = "qualification"
	ColumnDocumentCollection = "document_collection"
	ColumnDocumentReview     = "document_review"
	ColumnBankSubmission     = "bank_submission"
	ColumnBankAnalysis       = "bank_analysis"
	ColumnPreApproval        = "pre_approval"
	ColumnAppraisal          = "appraisal"
	ColumnFinalApproval      = "final_approval"
	ColumnDeedScheduling     = "deed_scheduling"
	ColumnDeedSigned         = "deed_signed"
	ColumnDisbursement       = "disbursement"
	ColumnCompleted          = "completed"
	ColumnArchived           = "archived"
)

var columns = []string{
	ColumnIntake,
	ColumnQualification,
	ColumnDocumentCollection,
	ColumnDocumentReview,
	ColumnBankSubmission,
	ColumnBankAnalysis,
	ColumnPreApproval,
	ColumnAppraisal,
	ColumnFinalApproval,
	ColumnDeedScheduling,
	ColumnDeedSigned,
	ColumnDisbursement,
	ColumnCompleted,
	ColumnArchived,
}

var index = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c] = i
	}
	return m
}()

// Columns returns a copy of the board columns in order.
func Columns() []string {
	return append([]string(nil), columns...)
}

// First returns the column newly created processes start in.
func First() string {
	return ColumnIntake
}

// IsValid reports whether name is one of the board columns.
func IsValid(name string) bool {
	_, ok := index[name]
	return ok
}

// Index returns the board position of a column, or -1 for unknown names.
func Index(name string) int {
	i, ok := index[name]
	if !ok {
		return -1
	}
	return i
}
