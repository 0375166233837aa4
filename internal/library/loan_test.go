package library

import (
	"testing"
	"time"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestLoan(t *testing.T) model.BookLoan {
	t.Helper()
	return NewLoan(uuid.New(), BorrowInput{BookTitle: "The Go Programming Language"}, baseTime)
}

func TestNewLoan_DueDateFixedAtFourteenDays(t *testing.T) {
	loan := newTestLoan(t)

	assert.Equal(t, baseTime, loan.BorrowedDate)
	assert.Equal(t, baseTime.Add(14*24*time.Hour), loan.DueDate)
	assert.Equal(t, model.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, 0, loan.Fine)
	assert.Nil(t, loan.ReturnedDate)
}

func TestClassify(t *testing.T) {
	loan := newTestLoan(t)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"just borrowed", baseTime, model.LoanStatusBorrowed},
		{"ten days in", baseTime.Add(10 * 24 * time.Hour), model.LoanStatusBorrowed},
		{"exactly at due date", loan.DueDate, model.LoanStatusBorrowed},
		{"one second past due", loan.DueDate.Add(time.Second), model.LoanStatusOverdue},
		{"fifteen days in", baseTime.Add(15 * 24 * time.Hour), model.LoanStatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(loan, tc.now))
		})
	}
}

func TestClassify_ReturnedDominates(t *testing.T) {
	loan := newTestLoan(t)
	returnedAt := loan.DueDate.Add(-time.Hour)
	loan.ReturnedDate = &returnedAt

	// Returned wins regardless of how far past due we look.
	assert.Equal(t, model.LoanStatusReturned, Classify(loan, loan.DueDate.Add(100*24*time.Hour)))
}

func TestClassify_IsPure(t *testing.T) {
	loan := newTestLoan(t)
	now := baseTime.Add(20 * 24 * time.Hour)

	first := Classify(loan, now)
	second := Classify(loan, now)

	assert.Equal(t, first, second)
	// Classification never mutates the record.
	assert.Equal(t, model.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, baseTime.Add(14*24*time.Hour), loan.DueDate)
}

func TestIsActive(t *testing.T) {
	loan := newTestLoan(t)
	assert.True(t, IsActive(loan, baseTime))
	assert.True(t, IsActive(loan, loan.DueDate.Add(48*time.Hour)), "overdue loans stay in active listings")

	returned, err := Return(loan, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, IsActive(returned, baseTime.Add(2*time.Hour)))
}

func TestReturn_OnTimeNoFine(t *testing.T) {
	loan := newTestLoan(t)

	returned, err := Return(loan, loan.DueDate)
	require.NoError(t, err)

	assert.Equal(t, model.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedDate)
	assert.Equal(t, loan.DueDate, *returned.ReturnedDate)
	assert.Equal(t, 0, returned.Fine, "returning at exactly the due date is on time")
}

func TestReturn_FineTruncatesToFullDays(t *testing.T) {
	loan := newTestLoan(t)

	cases := []struct {
		name     string
		late     time.Duration
		wantFine int
	}{
		{"one second late", time.Second, 0},
		{"23 hours late", 23 * time.Hour, 0},
		{"25 hours late", 25 * time.Hour, 5},
		{"two days late", 2 * 24 * time.Hour, 10},
		{"two days and change", 2*24*time.Hour + 5*time.Hour, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			returned, err := Return(loan, loan.DueDate.Add(tc.late))
			require.NoError(t, err)
			assert.Equal(t, tc.wantFine, returned.Fine)
		})
	}
}

func TestReturn_DoubleReturnRejected(t *testing.T) {
	loan := newTestLoan(t)

	first, err := Return(loan, loan.DueDate.Add(25*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, first.ReturnedDate)

	again, err := Return(first, loan.DueDate.Add(10*24*time.Hour))
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	// Stored fine and returnedDate stay frozen.
	assert.Equal(t, first.Fine, again.Fine)
	assert.Equal(t, *first.ReturnedDate, *again.ReturnedDate)
}

func TestBorrowReturnScenario(t *testing.T) {
	// Borrow at T, dueDate = T+14d. Borrowed at T+10d, overdue at T+15d,
	// returned at T+16d with 2 days of fines.
	loan := newTestLoan(t)

	assert.Equal(t, model.LoanStatusBorrowed, Classify(loan, baseTime.Add(10*24*time.Hour)))
	assert.Equal(t, model.LoanStatusOverdue, Classify(loan, baseTime.Add(15*24*time.Hour)))

	returned, err := Return(loan, baseTime.Add(16*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, returned.Status)
	assert.Equal(t, 10, returned.Fine)
}

func TestOverdueDays(t *testing.T) {
	due := baseTime

	assert.Equal(t, 0, OverdueDays(due, due.Add(-time.Hour)))
	assert.Equal(t, 0, OverdueDays(due, due))
	assert.Equal(t, 0, OverdueDays(due, due.Add(23*time.Hour)))
	assert.Equal(t, 1, OverdueDays(due, due.Add(24*time.Hour)))
	assert.Equal(t, 3, OverdueDays(due, due.Add(3*24*time.Hour+time.Minute)))
}
