// Package model defines the DTOs exchanged with the attendance backend.
package model

import (
	"io"
	"time"
)

// Ref is an id/name pair used for roles and account statuses.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// RefID references a role/status/file by id only, for write payloads.
type RefID struct {
	ID int `json:"id"`
}

// FileRef points at an uploaded file (profile photo).
type FileRef struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// User is the identity/profile projection returned by the backend.
// It is an immutable snapshot, superseded wholesale on each fetch.
type User struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone,omitempty"`
	Position  string   `json:"position,omitempty"`
	Photo     *FileRef `json:"photo,omitempty"`
	Role      Ref      `json:"role"`
	Status    Ref      `json:"status"`
}

// AttendanceStatus is the backend's day-state enum.
type AttendanceStatus string

const (
	StatusCheckedIn  AttendanceStatus = "in"
	StatusCheckedOut AttendanceStatus = "out"
)

// Attendance is one record per user per calendar day.
// CheckOutTime non-nil implies CheckInTime non-nil; the backend owns the
// transition rules and the client does not re-validate them.
type Attendance struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"userId"`
	Date         string           `json:"date"` // yyyy-mm-dd
	CheckInTime  *time.Time       `json:"checkInTime"`
	CheckOutTime *time.Time       `json:"checkOutTime"`
	Status       AttendanceStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// AttendanceSummary is the ranged-report row: an Attendance plus the
// soft-delete marker the summary endpoint exposes.
type AttendanceSummary struct {
	Attendance
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// LoginResponse is the payload of POST /auth/email/login.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	TokenExpires int64  `json:"tokenExpires"` // epoch ms
	User         User   `json:"user"`
}

// RefreshResponse is the payload of POST /auth/refresh. All three fields are
// required; a response missing any of them is treated as a refresh failure.
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	TokenExpires int64  `json:"tokenExpires"` // epoch ms
}

// Upload is the payload of POST /files/upload.
type Upload struct {
	File FileRef `json:"file"`
}

// ProfileUpdate describes a partial profile change. Nil fields are omitted
// from the PATCH payload entirely. A non-nil Photo is uploaded first and
// replaced by its file reference.
type ProfileUpdate struct {
	Phone     *string
	Password  *string
	PhotoName string
	Photo     io.Reader
}

// EmployeeCreate is the admin payload of POST /users.
type EmployeeCreate struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone,omitempty"`
	Position  *string `json:"position,omitempty"`
	Role      RefID   `json:"role"`
	Status    RefID   `json:"status"`
}

// EmployeeUpdate is the admin payload of PATCH /users/{id}. Password is
// optional; omitted fields stay absent from the payload.
type EmployeeUpdate struct {
	Password  *string `json:"password,omitempty"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone,omitempty"`
	Position  *string `json:"position,omitempty"`
	Role      RefID   `json:"role"`
	Status    RefID   `json:"status"`
}

// EmployeePage is the paged envelope of GET /users.
type EmployeePage struct {
	Data        []User `json:"data"`
	HasNextPage bool   `json:"hasNextPage"`
}
