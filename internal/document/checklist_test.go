package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	processmodels "brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
)

func slot(processID id.ProcessID, kind string, status Status) *Document {
	return &Document{
		ID:        id.DocumentID(uuid.New()),
		ProcessID: processID,
		Kind:      kind,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

func TestRequiredKinds(t *testing.T) {
	credit := RequiredKinds(processmodels.TypeCredit)
	assert.Len(t, credit, 5)
	assert.Contains(t, credit, "bank_statements")

	realestate := RequiredKinds(processmodels.TypeRealEstate)
	assert.Len(t, realestate, 3)
	assert.Contains(t, realestate, "energy_certificate")

	// Callers get a copy, not the shared table.
	credit[0] = "tampered"
	assert.Equal(t, "identification", RequiredKinds(processmodels.TypeCredit)[0])
}

func TestBuildChecklist(t *testing.T) {
	processID := id.ProcessID(uuid.New())

	t.Run("empty process misses everything", func(t *testing.T) {
		checklist := BuildChecklist(processID, processmodels.TypeCredit, nil)
		assert.False(t, checklist.Complete)
		assert.Empty(t, checklist.Received)
		assert.Len(t, checklist.Missing, 5)
	})

	t.Run("requested slots do not count as received", func(t *testing.T) {
		documents := []*Document{
			slot(processID, "identification", StatusRequested),
		}
		checklist := BuildChecklist(processID, processmodels.TypeRealEstate, documents)
		assert.NotContains(t, checklist.Received, "identification")
		assert.Contains(t, checklist.Missing, "identification")
	})

	t.Run("rejected slots go back to missing", func(t *testing.T) {
		documents := []*Document{
			slot(processID, "identification", StatusRejected),
		}
		checklist := BuildChecklist(processID, processmodels.TypeRealEstate, documents)
		assert.Contains(t, checklist.Missing, "identification")
	})

	t.Run("received and verified both fulfill a slot", func(t *testing.T) {
		documents := []*Document{
			slot(processID, "identification", StatusReceived),
			slot(processID, "property_documents", StatusVerified),
			slot(processID, "energy_certificate", StatusReceived),
		}
		checklist := BuildChecklist(processID, processmodels.TypeRealEstate, documents)
		assert.True(t, checklist.Complete)
		assert.Empty(t, checklist.Missing)
		require.Len(t, checklist.Received, 3)
	})

	t.Run("extra kinds outside the list are ignored", func(t *testing.T) {
		documents := []*Document{
			slot(processID, "marriage_certificate", StatusVerified),
		}
		checklist := BuildChecklist(processID, processmodels.TypeRealEstate, documents)
		assert.False(t, checklist.Complete)
		assert.NotContains(t, checklist.Required, "marriage_certificate")
	})
}
