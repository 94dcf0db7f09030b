package endpoint

import (
	"net/http"
	"strings"
	"testing"

	"github.com/medisync/hospital-api/model"
)

func TestRegisterPatient(t *testing.T) {
	r, db := newTestServer(t)

	token, userID := registerPatientForTest(t, r, "patient@example.com")
	if token == "" || userID == 0 {
		t.Fatalf("expected token and user id, got %q / %d", token, userID)
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if user.Password == "password123" {
		t.Fatalf("password stored in plaintext")
	}
	if !strings.HasPrefix(user.Password, "argon2id$") {
		t.Fatalf("expected argon2id hash, got %s", user.Password)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := newTestServer(t)

	registerPatientForTest(t, r, "dup@example.com")

	w, resp, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/register/user",
		body: map[string]interface{}{
			"full_name": "Second Account",
			"email":     "dup@example.com",
			"password":  "password123",
		},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d: %s", w.Code, w.Body.String())
	}
	assertMsg(t, resp, "Email already exists")
}

func TestRegisterInvalidBloodGroup(t *testing.T) {
	r, _ := newTestServer(t)

	w, resp, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/register/user",
		body: map[string]interface{}{
			"full_name":   "Bad Blood",
			"email":       "badblood@example.com",
			"password":    "password123",
			"blood_group": "Q+",
		},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	assertMsg(t, resp, "Invalid blood group")
}

func TestRegisterHospitalCreatesHospitalRecord(t *testing.T) {
	r, db := newTestServer(t)

	_, hospital := registerHospitalForTest(t, r, db, "admin@citygeneral.example.com")

	if hospital.Name != "City General" {
		t.Fatalf("expected hospital named after admin, got %q", hospital.Name)
	}
	for _, bank := range []model.BedBank{hospital.ICU, hospital.General, hospital.Emergency} {
		if bank.Total != 0 || bank.Occupied != 0 {
			t.Fatalf("expected zero beds on registration, got %+v", hospital)
		}
	}
}

func TestRegisterDoctorUnknownHospital(t *testing.T) {
	r, _ := newTestServer(t)

	w, resp, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/register/doctor",
		body: map[string]interface{}{
			"full_name":      "Dr. Nowhere",
			"email":          "nowhere@example.com",
			"password":       "password123",
			"specialization": "Cardiology",
			"hospital_id":    999,
		},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown hospital, got %d", w.Code)
	}
	assertMsg(t, resp, "Hospital not found")
}

func TestRegisterDoctorCreatesProfile(t *testing.T) {
	r, db := newTestServer(t)

	_, hospital := registerHospitalForTest(t, r, db, "admin@doctors.example.com")

	_, doctorUserID := registerAccountForTest(t, r, "/api/v1/auth/register/doctor", map[string]interface{}{
		"full_name":        "Grace Hopper",
		"email":            "grace@example.com",
		"password":         "password123",
		"specialization":   "Neurology",
		"qualifications":   "MBBS, MD",
		"experience_years": 12,
		"hospital_id":      hospital.ID,
		"available_slots":  []string{"2026-09-01T10:00:00Z", "2026-09-01T09:00:00Z"},
	})

	var doctor model.Doctor
	if err := db.Where("user_id = ?", doctorUserID).First(&doctor).Error; err != nil {
		t.Fatalf("doctor profile missing: %v", err)
	}
	if doctor.HospitalID != hospital.ID {
		t.Fatalf("doctor linked to hospital %d, want %d", doctor.HospitalID, hospital.ID)
	}
	if doctor.Specialization != "Neurology" {
		t.Fatalf("unexpected specialization %q", doctor.Specialization)
	}
	// Slots are stored in chronological order regardless of input order.
	if got := string(doctor.AvailableSlots); !strings.Contains(got, `"2026-09-01T09:00:00Z","2026-09-01T10:00:00Z"`) {
		t.Fatalf("expected sorted slots, got %s", got)
	}
}

func TestLoginFailureMessagesDoNotRevealAccounts(t *testing.T) {
	r, _ := newTestServer(t)

	registerPatientForTest(t, r, "known@example.com")

	wrongPassword, respWrong, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/login",
		body:        map[string]string{"email": "known@example.com", "password": "not-the-password"},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	unknownEmail, respUnknown, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/login",
		body:        map[string]string{"email": "ghost@example.com", "password": "whatever123"},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if wrongPassword.Code != http.StatusBadRequest || unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for both failures, got %d and %d", wrongPassword.Code, unknownEmail.Code)
	}
	if respWrong["msg"] != respUnknown["msg"] {
		t.Fatalf("failure messages differ: %q vs %q", respWrong["msg"], respUnknown["msg"])
	}
	assertMsg(t, respWrong, "Invalid email or password")
}

func TestLoginSuccessReturnsRole(t *testing.T) {
	r, _ := newTestServer(t)

	registerPatientForTest(t, r, "login@example.com")

	w, resp, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/login",
		body:        map[string]string{"email": "login@example.com", "password": "password123"},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]interface{})
	if data["role"] != model.RolePatient {
		t.Fatalf("expected role %q, got %v", model.RolePatient, data["role"])
	}
	if data["token"] == "" {
		t.Fatalf("expected a session token")
	}
}

func TestAccountLockoutAfterRepeatedFailures(t *testing.T) {
	r, _ := newTestServer(t)

	registerPatientForTest(t, r, "lockme@example.com")

	for i := 0; i < 5; i++ {
		w, _, err := performRequest(r, requestSpec{
			method:      http.MethodPost,
			requestPath: "/api/v1/auth/login",
			body:        map[string]string{"email": "lockme@example.com", "password": "wrong-password"},
		})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i+1, w.Code)
		}
	}

	// Even the correct password is rejected while the account is locked,
	// and the response carries the same generic message as any other
	// credential failure so the lock does not confirm the email exists.
	w, resp, err := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/api/v1/auth/login",
		body:        map[string]string{"email": "lockme@example.com", "password": "password123"},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while locked, got %d", w.Code)
	}
	assertMsg(t, resp, "Invalid email or password")
	if body := w.Body.String(); strings.Contains(body, "locked") {
		t.Fatalf("lockout leaked into response: %s", body)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, _ := newTestServer(t)

	token, _ := registerPatientForTest(t, r, "logout@example.com")

	w, _, err := performRequest(r, requestSpec{
		method:      http.MethodDelete,
		requestPath: "/api/v1/auth/logout",
		headers:     bearerHeader(token),
	})
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d: %s", w.Code, w.Body.String())
	}

	w, _, err = performRequest(r, requestSpec{
		method:      http.MethodGet,
		requestPath: "/api/v1/appointments",
		headers:     bearerHeader(token),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
