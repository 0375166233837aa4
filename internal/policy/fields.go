package policy

import (
	"time"

	"anoa.com/studentrecords/internal/model"
)

// StudentUpdate is the bindable update payload for a student record. Nil
// means "not supplied". Which fields actually apply is decided by the field
// access table below, never by the handler.
type StudentUpdate struct {
	RollNumber  *string    `json:"rollNumber"`
	Name        *string    `json:"name"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Department  *string    `json:"department"`
	Year        *int       `json:"year" binding:"omitempty,min=1,max=4"`
	Semester    *int       `json:"semester" binding:"omitempty,min=1,max=8"`
	Attendance  *float64   `json:"attendance" binding:"omitempty,min=0,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive graduated"`
}

// Field names a student-profile attribute in the access table.
type Field string

const (
	FieldRollNumber  Field = "rollNumber"
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldAddress     Field = "address"
	FieldDateOfBirth Field = "dateOfBirth"
	FieldDepartment  Field = "department"
	FieldYear        Field = "year"
	FieldSemester    Field = "semester"
	FieldAttendance  Field = "attendance"
	FieldStatus      Field = "status"
)

// studentFieldAccess declares which roles may write each field. Fields absent
// from a role's set are silently dropped from that role's payload, not
// rejected. Students may only touch their contact details and department.
var studentFieldAccess = map[Field]map[string]bool{
	FieldRollNumber:  {model.RoleAdmin: true},
	FieldName:        {model.RoleAdmin: true},
	FieldEmail:       {model.RoleAdmin: true, model.RoleStudent: true},
	FieldPhone:       {model.RoleAdmin: true, model.RoleStudent: true},
	FieldAddress:     {model.RoleAdmin: true, model.RoleStudent: true},
	FieldDateOfBirth: {model.RoleAdmin: true},
	FieldDepartment:  {model.RoleAdmin: true, model.RoleStudent: true},
	FieldYear:        {model.RoleAdmin: true},
	FieldSemester:    {model.RoleAdmin: true},
	FieldAttendance:  {model.RoleAdmin: true},
	FieldStatus:      {model.RoleAdmin: true},
}

// FieldWritable reports whether role may write field.
func FieldWritable(field Field, role string) bool {
	return studentFieldAccess[field][role]
}

// FilterStudentUpdate projects the payload down to the fields the role may
// write. The projection is explicit per field so the allow-list lives in one
// declared table rather than in string-keyed filtering at call sites.
func FilterStudentUpdate(role string, in StudentUpdate) StudentUpdate {
	var out StudentUpdate

	if FieldWritable(FieldRollNumber, role) {
		out.RollNumber = in.RollNumber
	}
	if FieldWritable(FieldName, role) {
		out.Name = in.Name
	}
	if FieldWritable(FieldEmail, role) {
		out.Email = in.Email
	}
	if FieldWritable(FieldPhone, role) {
		out.Phone = in.Phone
	}
	if FieldWritable(FieldAddress, role) {
		out.Address = in.Address
	}
	if FieldWritable(FieldDateOfBirth, role) {
		out.DateOfBirth = in.DateOfBirth
	}
	if FieldWritable(FieldDepartment, role) {
		out.Department = in.Department
	}
	if FieldWritable(FieldYear, role) {
		out.Year = in.Year
	}
	if FieldWritable(FieldSemester, role) {
		out.Semester = in.Semester
	}
	if FieldWritable(FieldAttendance, role) {
		out.Attendance = in.Attendance
	}
	if FieldWritable(FieldStatus, role) {
		out.Status = in.Status
	}

	return out
}
