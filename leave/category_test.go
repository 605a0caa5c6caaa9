package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name, code string
		want       leave.LeaveCategory
	}{
		{"Congés payés", "", leave.CategoryPaid},
		{"Paid leave", "", leave.CategoryPaid},
		{"Annual", "CP", leave.CategoryPaid},
		{"Congé sans solde", "", leave.CategoryUnpaid},
		{"Unpaid leave", "", leave.CategoryUnpaid},
		{"Télétravail", "", leave.CategoryRemote},
		{"Remote work", "", leave.CategoryRemote},
		{"Maladie", "", leave.CategorySickness},
		{"Sick leave (paid)", "", leave.CategorySickness},
		{"Parental", "", leave.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.Classify(tt.name, tt.code))
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	first := leave.Classify("TÉLÉTRAVAIL", "tt")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, leave.Classify("TÉLÉTRAVAIL", "tt"))
	}
}

func TestCategoryTable_DefaultsToOther(t *testing.T) {
	table := leave.CategoryTable{"cp": leave.CategoryPaid}
	assert.Equal(t, leave.CategoryPaid, table.Category("cp"))
	assert.Equal(t, leave.CategoryOther, table.Category("missing"))
}

func TestSeedCategoryTable_ExplicitEntriesWin(t *testing.T) {
	code := "SS"
	types := []leave.LeaveType{
		{ID: "lt-1", Name: "Congés payés"},
		{ID: "lt-2", Name: "Special"},
		{ID: "lt-3", Name: "Home office"},
	}
	balances := []leave.LeaveBalanceItem{
		{LeaveTypeID: "lt-2", Name: "Congé sans solde", Code: &code, Balance: generic.Days(0)},
	}
	existing := leave.CategoryTable{"lt-3": leave.CategoryRemote}

	table := leave.SeedCategoryTable(existing, types, balances)

	assert.Equal(t, leave.CategoryPaid, table.Category("lt-1"))
	assert.Equal(t, leave.CategoryUnpaid, table.Category("lt-2"))
	assert.Equal(t, leave.CategoryRemote, table.Category("lt-3"))
}

func TestAutoAllocatable(t *testing.T) {
	assert.True(t, leave.CategoryPaid.AutoAllocatable())
	assert.True(t, leave.CategoryUnpaid.AutoAllocatable())
	assert.True(t, leave.CategoryRemote.AutoAllocatable())
	assert.False(t, leave.CategorySickness.AutoAllocatable())
	assert.False(t, leave.CategoryOther.AutoAllocatable())
}
