package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumns(t *testing.T) {
	columns := Columns()
	assert.Len(t, columns, 14)
	assert.Equal(t, ColumnIntake, columns[0])
	assert.Equal(t, ColumnArchived, columns[len(columns)-1])

	// Callers must not be able to mutate the board through the copy.
	columns[0] = "tampered"
	assert.Equal(t, ColumnIntake, Columns()[0])
}

func TestFirst(t *testing.T) {
	assert.Equal(t, ColumnIntake, First())
}

func TestIsValid(t *testing.T) {
	for _, column := range Columns() {
		assert.True(t, IsValid(column), "expected %q to be valid", column)
	}
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Intake"))
	assert.False(t, IsValid("unknown_column"))
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, Index(ColumnIntake))
	assert.Equal(t, 13, Index(ColumnArchived))
	assert.Equal(t, -1, Index("nope"))

	// Board order is part of the contract the frontend renders from.
	assert.Less(t, Index(ColumnBankSubmission), Index(ColumnBankAnalysis))
	assert.Less(t, Index(ColumnDeedScheduling), Index(ColumnDeedSigned))
}
