package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/attendly/attendly-cli/internal/model"
	"github.com/attendly/attendly-cli/internal/session"
)

func jsonBody(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// expiryOf prefers the explicit epoch-ms expiry and falls back to the access
// token's own exp claim (parsed without validation; we never verify the
// signature client-side).
func expiryOf(token string, epochMs int64) time.Time {
	if epochMs != 0 {
		return time.UnixMilli(epochMs)
	}
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(defaultTokenTTL)
}

// Login exchanges credentials for a session and stores it.
func (c *Client) Login(ctx context.Context, email, password string) Result[model.LoginResponse] {
	res := exec[model.LoginResponse](ctx, c, call{
		method: http.MethodPost,
		path:   "/auth/email/login",
		body:   jsonBody(map[string]string{"email": email, "password": password}),
		noAuth: true,
	})
	if !res.OK() || res.Data == nil {
		return res
	}
	lr := *res.Data
	c.setSession(session.Session{
		AccessToken:  lr.Token,
		RefreshToken: lr.RefreshToken,
		ExpiresAt:    expiryOf(lr.Token, lr.TokenExpires),
		User:         lr.User,
	})
	return res
}

// Logout notifies the server best-effort and then clears the local session
// unconditionally, server or network failure included.
func (c *Client) Logout(ctx context.Context) Result[struct{}] {
	res := exec[struct{}](ctx, c, call{method: http.MethodPost, path: "/auth/logout"})
	c.clearSession()
	return res
}

// Me fetches the authenticated identity; used as the startup validation probe.
func (c *Client) Me(ctx context.Context) Result[model.User] {
	res := exec[model.User](ctx, c, call{method: http.MethodGet, path: "/auth/me"})
	if res.OK() && res.Data != nil {
		c.setUser(*res.Data)
	}
	return res
}

// Profile fetches the full profile.
func (c *Client) Profile(ctx context.Context) Result[model.User] {
	res := exec[model.User](ctx, c, call{method: http.MethodGet, path: "/users/profile/me"})
	if res.OK() && res.Data != nil {
		c.setUser(*res.Data)
	}
	return res
}

// UploadFile sends a multipart upload. The content type carries the multipart
// boundary instead of the JSON default.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) Result[model.Upload] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err == nil {
		_, err = io.Copy(fw, r)
	}
	if cerr := mw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errResult[model.Upload](http.StatusInternalServerError, err.Error())
	}
	return exec[model.Upload](ctx, c, call{
		method:      http.MethodPost,
		path:        "/files/upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
}

// UpdateProfile applies a partial profile change. A supplied photo is uploaded
// first and referenced by id; nil fields stay absent from the PATCH payload.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) Result[model.User] {
	patch := struct {
		Phone    *string        `json:"phone,omitempty"`
		Password *string        `json:"password,omitempty"`
		Photo    *model.FileRef `json:"photo,omitempty"`
	}{Phone: upd.Phone, Password: upd.Password}

	if upd.Photo != nil {
		up := c.UploadFile(ctx, upd.PhotoName, upd.Photo)
		if !up.OK() || up.Data == nil {
			return errResult[model.User](up.Status, up.Error)
		}
		patch.Photo = &model.FileRef{ID: up.Data.File.ID}
	}

	res := exec[model.User](ctx, c, call{
		method: http.MethodPatch,
		path:   "/users/profile/me",
		body:   jsonBody(patch),
	})
	if res.OK() && res.Data != nil {
		c.setUser(*res.Data)
	}
	return res
}

// CheckIn opens today's attendance. Transition legality is the backend's call;
// the client surfaces whatever it returns.
func (c *Client) CheckIn(ctx context.Context) Result[model.Attendance] {
	return exec[model.Attendance](ctx, c, call{method: http.MethodPost, path: "/attendances/check-in"})
}

// CheckOut closes today's attendance.
func (c *Client) CheckOut(ctx context.Context) Result[model.Attendance] {
	return exec[model.Attendance](ctx, c, call{method: http.MethodPost, path: "/attendances/check-out"})
}

// AttendanceSummary fetches the caller's attendance records, optionally
// bounded by yyyy-mm-dd dates.
func (c *Client) AttendanceSummary(ctx context.Context, dateFrom, dateTo string) Result[[]model.AttendanceSummary] {
	q := url.Values{}
	if dateFrom != "" {
		q.Set("dateFrom", dateFrom)
	}
	if dateTo != "" {
		q.Set("dateTo", dateTo)
	}
	return exec[[]model.AttendanceSummary](ctx, c, call{
		method: http.MethodGet,
		path:   "/attendances/my-summary",
		query:  q,
	})
}

// TodayAttendance derives today's record from the ranged summary. Nil Data
// with no error means no record exists yet today; this is a composition, not
// a distinct backend call.
func (c *Client) TodayAttendance(ctx context.Context) Result[model.Attendance] {
	today := time.Now().Format(time.DateOnly)
	res := c.AttendanceSummary(ctx, today, today)
	if !res.OK() {
		return errResult[model.Attendance](res.Status, res.Error)
	}
	if res.Data != nil {
		for _, row := range *res.Data {
			if row.Date == today {
				return okResult(res.Status, row.Attendance)
			}
		}
	}
	return Result[model.Attendance]{Status: res.Status}
}

// Employees lists user accounts (admin).
func (c *Client) Employees(ctx context.Context, page, limit int) Result[model.EmployeePage] {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return exec[model.EmployeePage](ctx, c, call{method: http.MethodGet, path: "/users", query: q})
}

// CreateEmployee creates a user account (admin).
func (c *Client) CreateEmployee(ctx context.Context, req model.EmployeeCreate) Result[model.User] {
	return exec[model.User](ctx, c, call{method: http.MethodPost, path: "/users", body: jsonBody(req)})
}

// UpdateEmployee partially updates a user account (admin).
func (c *Client) UpdateEmployee(ctx context.Context, id int64, req model.EmployeeUpdate) Result[model.User] {
	return exec[model.User](ctx, c, call{
		method: http.MethodPatch,
		path:   "/users/" + strconv.FormatInt(id, 10),
		body:   jsonBody(req),
	})
}

// DeleteEmployee removes a user account (admin).
func (c *Client) DeleteEmployee(ctx context.Context, id int64) Result[struct{}] {
	return exec[struct{}](ctx, c, call{
		method: http.MethodDelete,
		path:   "/users/" + strconv.FormatInt(id, 10),
	})
}
