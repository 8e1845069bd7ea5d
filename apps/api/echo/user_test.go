package echoapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/am-3/campus/core/user"
)

func Test_userApi_me(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	naughty := createUser(t, "N", "Dog", "ndog@test.cd", user.RoleStudent, false)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Deactivated account", path: "/v1/users/me", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Get me", path: "/v1/users/me", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	srv := setup(t)

	path := func(search, ordering, role string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if role != "" {
			v.Add("role", role)
		}
		return "/v1/users?" + v.Encode()
	}

	now := time.Now().UTC().Truncate(time.Second)
	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true, now.Add(-3*time.Hour))
	faculty := createUser(t, "Ben", "Okoro", "ben@test.cd", user.RoleFaculty, true, now.Add(-2*time.Hour))
	admin := createUser(t, "Cleo", "Dietrich", "cleo@test.cd", user.RoleAdmin, true, now.Add(-time.Hour))

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin, faculty, student),
		},
		{name: "search (unknown)", path: path("lol", "", ""), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "search=ash", path: path("ash", "", ""), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, student),
		},
		{name: "role (unknown)", path: path("", "", "janitor"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "role=faculty", path: path("", "", user.RoleFaculty), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, faculty),
		},
		{
			name: "order by email", path: path("", "email", ""), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, student, faculty, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	other := createUser(t, "Ben", "Okoro", "ben@test.cd", user.RoleStudent, true)
	admin := createUser(t, "Cleo", "Dietrich", "cleo@test.cd", user.RoleAdmin, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + student.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Owner or admin required", path: "/v1/users/" + student.ID, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get self", path: "/v1/users/" + student.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "Admin gets any", path: "/v1/users/" + student.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "Not found", path: "/v1/users/00000000-0000-0000-0000-000000000000", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	admin := createUser(t, "Cleo", "Dietrich", "cleo@test.cd", user.RoleAdmin, true)

	t.Run("Owner updates own names", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"first_name": "Aisha", "last_name": "Varma"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, student), body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		got := unmarshalUser(t, rec.Body.Bytes())
		if got.FirstName != "Aisha" || got.LastName != "Varma" {
			t.Errorf("names not updated: %+v", got)
		}
		if got.Role != user.RoleStudent {
			t.Errorf("role changed: %v", got.Role)
		}
	})

	t.Run("Owner cannot change own role", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"role": user.RoleAdmin})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, student), body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if got := unmarshalUser(t, rec.Body.Bytes()); got.Role != user.RoleStudent {
			t.Errorf("role = %v; want %v", got.Role, user.RoleStudent)
		}
	})

	t.Run("Admin changes role", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"role": user.RoleFaculty})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, admin), body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if got := unmarshalUser(t, rec.Body.Bytes()); got.Role != user.RoleFaculty {
			t.Errorf("role = %v; want %v", got.Role, user.RoleFaculty)
		}
	})

	t.Run("Invalid role rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"role": "janitor"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, admin), body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("Duplicate email rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"email": admin.Email})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, admin), body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}
