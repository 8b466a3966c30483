package rest

import (
	"net/http"
	"testing"

	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	setupWebServer(t)

	w, err := testRestPost("http://localhost/api/v1/login", "",
		`{"email": "Admin@aru.ac.tz", "password": "letmein"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, web.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	result := decodeBody(t, w)
	decodedStringEquals(t, result, "identity/address", testAdmin)
	decodedStringEquals(t, result, "identity/role", "admin")
	decodedStringEquals(t, result, "identity/home", "/admin")

	// The issued token identifies the caller.
	token, _ := result.(map[string]any)["token"].(string)
	w, err = testRestGet("http://localhost/api/v1/me", token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	decodedStringEquals(t, decodeBody(t, w), "name", "Administrator")
}

func TestLoginRejected(t *testing.T) {
	setupWebServer(t)

	tcs := []struct {
		name   string
		body   string
		status int
		fields []any
	}{
		{"wrong password", `{"email": "admin@aru.ac.tz", "password": "nope"}`, 401, nil},
		{"unknown account", `{"email": "who@aru.ac.tz", "password": "x"}`, 401, nil},
		{"missing fields", `{"email": ""}`, 422, []any{"email", "password"}},
		{"malformed", `{"email": `, 400, nil},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			w, err := testRestPost("http://localhost/api/v1/login", "", tc.body)
			require.NoError(t, err)
			assert.Equal(t, tc.status, w.Code)
			result := decodeBody(t, w)
			assert.NotEmpty(t, result.(map[string]any)["error"])
			if tc.fields != nil {
				assert.Equal(t, tc.fields, result.(map[string]any)["fields"])
			}
		})
	}
}

func TestRegister(t *testing.T) {
	setupWebServer(t)

	body := `{
		"fullName": "Peter Mollel",
		"email": "peter@aru.ac.tz",
		"password": "pw",
		"confirmPassword": "pw",
		"department": "Computer Science",
		"role": "Lecturer"
	}`
	w, err := testRestPost("http://localhost/api/v1/register", "", body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeBody(t, w)
	decodedStringEquals(t, result, "identity/role", "lecturer")
	decodedStringEquals(t, result, "identity/home", "/dashboard")

	// Second registration of the same address conflicts.
	w, err = testRestPost("http://localhost/api/v1/register", "", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, w.Code)

	// New account can log in.
	w, err = testRestPost("http://localhost/api/v1/login", "",
		`{"email": "peter@aru.ac.tz", "password": "pw"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	setupWebServer(t)

	w, err := testRestPost("http://localhost/api/v1/register", "", `{
		"fullName": "Peter Mollel",
		"email": "peter@aru.ac.tz",
		"password": "pw",
		"confirmPassword": "other",
		"department": "Computer Science"
	}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	decodedStringEquals(t, decodeBody(t, w), "fields/[0]", "confirmPassword")
}

func TestLogout(t *testing.T) {
	setupWebServer(t)

	w, err := testRestPost("http://localhost/api/v1/logout", "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthRequired(t *testing.T) {
	env := setupWebServer(t)

	w, err := testRestGet("http://localhost/api/v1/me", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, err = testRestGet("http://localhost/api/v1/me", "forged.token.value")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, err = testRestGet("http://localhost/api/v1/admin/users", env.studentToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, err = testRestGet("http://localhost/api/v1/admin/users", env.adminToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
}
