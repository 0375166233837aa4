package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/studentrecords/internal/library"
	"anoa.com/studentrecords/internal/model"
	"github.com/google/uuid"
)

// dueSoonWindow is how far ahead of the due date a reminder goes out.
const dueSoonWindow = 24 * time.Hour

// LoanSource is the slice of the student repository the worker reads from.
type LoanSource interface {
	UnreturnedLoans(ctx context.Context) ([]model.BookLoan, error)
}

// AccountSource resolves the account behind a student record.
type AccountSource interface {
	FindByStudentID(ctx context.Context, studentID uuid.UUID) (*model.User, error)
}

// Notifier is the hub surface the worker pushes reminders through.
type Notifier interface {
	Notify(userID, kind, content string)
}

// ReminderWorker periodically scans open loans and pushes due-soon and
// overdue notices over the websocket hub. It only reads loan rows;
// status and fines are settled when the book actually comes back.
type ReminderWorker struct {
	students LoanSource
	users    AccountSource
	hub      Notifier
	interval time.Duration

	// accountCache maps student IDs to account IDs between runs.
	accountCache map[uuid.UUID]string
}

func NewReminderWorker(students LoanSource, users AccountSource, hub Notifier, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		students:     students,
		users:        users,
		hub:          hub,
		interval:     interval,
		accountCache: make(map[uuid.UUID]string),
	}
}

// Run blocks until ctx is cancelled. One scan fires immediately so a
// fresh deploy doesn't wait a full interval for the first reminders.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ReminderWorker) scan(ctx context.Context) {
	loans, err := w.students.UnreturnedLoans(ctx)
	if err != nil {
		log.Printf("reminder scan failed: %v", err)
		return
	}

	now := time.Now()
	for _, loan := range loans {
		userID, ok := w.accountFor(ctx, loan.StudentID)
		if !ok {
			continue
		}

		switch {
		case now.After(loan.DueDate):
			days := library.OverdueDays(loan.DueDate, now)
			w.hub.Notify(userID, "loan.overdue", fmt.Sprintf(
				"%q is overdue, current fine %d", loan.BookTitle, days*library.FinePerDay))
		case loan.DueDate.Sub(now) <= dueSoonWindow:
			w.hub.Notify(userID, "loan.due_soon", fmt.Sprintf(
				"%q is due back on %s", loan.BookTitle, loan.DueDate.Format("02 Jan 2006")))
		}
	}
}

func (w *ReminderWorker) accountFor(ctx context.Context, studentID uuid.UUID) (string, bool) {
	if id, ok := w.accountCache[studentID]; ok {
		return id, true
	}
	user, err := w.users.FindByStudentID(ctx, studentID)
	if err != nil {
		return "", false
	}
	w.accountCache[studentID] = user.ID.String()
	return user.ID.String(), true
}
