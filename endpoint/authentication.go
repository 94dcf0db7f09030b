package endpoint

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

const sessionTTL = 24 * time.Hour

type RegisterRequest struct {
	FullName   string  `json:"full_name" binding:"required" example:"John Doe"`
	Email      string  `json:"email" binding:"required,email" example:"john@example.com"`
	Password   string  `json:"password" binding:"required,min=6" example:"password123"`
	Phone      string  `json:"phone" example:"+1-555-0100"`
	BloodGroup string  `json:"blood_group" example:"O+"`
	Longitude  float64 `json:"longitude" example:"77.5946"`
	Latitude   float64 `json:"latitude" example:"12.9716"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
}

type RegisterDoctorRequest struct {
	RegisterRequest
	Specialization  string   `json:"specialization" binding:"required" example:"Cardiology"`
	Qualifications  string   `json:"qualifications" example:"MBBS, MD"`
	ExperienceYears int      `json:"experience_years" example:"10"`
	HospitalID      uint     `json:"hospital_id" binding:"required"`
	AvailableSlots  []string `json:"available_slots"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Role   string `json:"role" example:"patient"`
	UserID uint   `json:"user_id" example:"1"`
}

// helper types and functions to simplify auth flows
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C     *gin.Context
	DB    *gorm.DB
	Email string
	CI    clientInfo
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existingUser model.User
	err := db.First(&existingUser, "email = ?", email).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: fmt.Errorf("email already exists")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func hashPasswordForSignup(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashedPassword, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashedPassword, salt, true
}

func validateBloodGroupOrRespond(c *gin.Context, bloodGroup string) bool {
	if bloodGroup != "" && !model.ValidBloodGroup(bloodGroup) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid blood group",
			Err: fmt.Errorf("blood group must be one of %v", model.BloodGroups),
		})
		return false
	}
	return true
}

func buildUserFromRequest(req RegisterRequest, roleID uint32, hash, salt string) model.User {
	return model.User{
		FullName:     util.NormalizeName(req.FullName),
		Email:        req.Email,
		Password:     hash,
		PasswordSalt: salt,
		RoleID:       roleID,
		Phone:        req.Phone,
		BloodGroup:   req.BloodGroup,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
		Street:       req.Street,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
	}
}

// registerAccount validates the shared registration fields, creates the user
// with the given role, and issues a login session. extra runs inside the same
// transaction for role-specific rows (hospital, doctor profile).
func registerAccount(c *gin.Context, req RegisterRequest, roleName string, extra func(tx *gorm.DB, user *model.User) error) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !validateBloodGroupOrRespond(c, req.BloodGroup) {
		return
	}

	if !ensureEmailAvailable(c, db, req.Email) {
		return
	}

	roleID, err := model.RoleIDByName(db, roleName)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Role not configured", Err: err})
		return
	}

	hash, salt, ok := hashPasswordForSignup(c, req.Password)
	if !ok {
		return
	}

	newUser := buildUserFromRequest(req, roleID, hash, salt)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if extra != nil {
			return extra(tx, &newUser)
		}
		return nil
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create account", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventSignupSuccess,
		UserID:    fmt.Sprintf("%d", newUser.ID),
		Email:     newUser.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   fmt.Sprintf("Account registered with role %s", roleName),
	})

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	token, session, err := issueSession(db, &newUser, ci)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}
	_ = util.AddSessionToUserSet(session.UserID, newUser.RoleID, token, time.Until(session.ExpiresAt))

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Registration successful",
		Data: LoginResponse{Token: token, Role: roleName, UserID: newUser.ID},
	})
}

// RegisterUser godoc
// @Summary      Register a patient account
// @Description  Create a patient user and return a bearer credential
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=LoginResponse} "Registration successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register/user [post]
func RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	registerAccount(c, req, model.RolePatient, nil)
}

// RegisterHospital godoc
// @Summary      Register a hospital account
// @Description  Create a hospital admin user and its hospital record with zero beds
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=LoginResponse} "Registration successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register/hospital [post]
func RegisterHospital(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	registerAccount(c, req, model.RoleHospitalAdmin, func(tx *gorm.DB, user *model.User) error {
		hospital := model.Hospital{Name: user.FullName, AdminID: user.ID}
		return tx.Create(&hospital).Error
	})
}

// RegisterDoctor godoc
// @Summary      Register a doctor account
// @Description  Create a doctor user and professional profile linked to an existing hospital
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterDoctorRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=LoginResponse} "Registration successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      404 {object} util.APIResponse "Hospital not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register/doctor [post]
func RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if req.ExperienceYears < 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Experience years must not be negative",
			Err: fmt.Errorf("experience_years is negative"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var hospital model.Hospital
	if err := db.First(&hospital, req.HospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Hospital not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	slots, err := encodeSlots(req.AvailableSlots)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid available slots", Err: err})
		return
	}

	registerAccount(c, req.RegisterRequest, model.RoleDoctor, func(tx *gorm.DB, user *model.User) error {
		doctor := model.Doctor{
			Name:            user.FullName,
			Specialization:  req.Specialization,
			Qualifications:  req.Qualifications,
			ExperienceYears: req.ExperienceYears,
			UserID:          user.ID,
			HospitalID:      hospital.ID,
			AvailableSlots:  slots,
		}
		return tx.Create(&doctor).Error
	})
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password; the failure message never reveals which field was wrong
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid credentials"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Email: req.Email, CI: ci}

	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}

	if !ensureAccountNotLocked(ctx, &user) {
		return
	}

	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}

	finalizeLogin(ctx, &user)
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	var user model.User
	err := ctx.DB.Where("email = ?", ctx.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(util.LoginParams{Email: ctx.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent, Reason: "user not found"})
		// Same message as a wrong password so the response does not reveal
		// whether the email is registered.
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(util.LoginParams{Email: ctx.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent, Reason: "database error"})
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		expiry := time.Unix(*user.LockedUntil, 0)
		util.LogLoginFailure(util.LoginParams{
			Email:     ctx.Email,
			IP:        ctx.CI.IP,
			UserAgent: ctx.CI.Agent,
			Reason:    fmt.Sprintf("account locked until %s", expiry.Format(time.RFC3339)),
		})
		// The lock detail stays in the security log; the response reuses the
		// generic credential message so it does not confirm the email exists.
		util.CallUserError(ctx.C, util.APIErrorParams{
			Msg: "Invalid email or password",
			Err: fmt.Errorf("invalid credentials"),
		})
		return false
	}
	return true
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(util.LoginParams{Email: ctx.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent, Reason: "password verification error"})
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if !match {
		incrementFailedAttempts(ctx.DB, user, ctx.CI)
		util.LogLoginFailure(util.LoginParams{Email: ctx.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent, Reason: "invalid password"})
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return false
	}
	return true
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= 5 {
		lockUntil := time.Now().Add(15 * time.Minute).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(util.AccountLockParams{UserID: user.ID, Email: user.Email, IP: ci.IP, Reason: "too many failed login attempts"})
		// Revoke any live sessions in the redis mirror while the lock holds.
		_ = util.InvalidateUserSessions(user.ID)
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(util.LoginParams{Email: user.Email, IP: ci.IP, UserAgent: ci.Agent, Reason: "failed to update failed attempts"})
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

func createJWTToken(user model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.RoleID,
		"exp":  time.Now().Add(sessionTTL).Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

// issueSession creates the JWT, persists the session row and returns both.
func issueSession(db *gorm.DB, user *model.User, ci clientInfo) (string, model.Session, error) {
	tokenString, err := createJWTToken(*user)
	if err != nil {
		return "", model.Session{}, err
	}
	session := model.Session{
		UserID:       user.ID,
		SessionToken: tokenString,
		ExpiresAt:    time.Now().Add(sessionTTL),
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	if err := db.Create(&session).Error; err != nil {
		return "", model.Session{}, err
	}
	return tokenString, session, nil
}

func finalizeLogin(ctx loginContext, user *model.User) {
	if err := resetFailedAttempts(ctx.DB, user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        ctx.CI.IP,
			Message:   fmt.Sprintf("Failed to reset failed attempts: %v", err),
		})
	}

	var role model.Role
	if err := ctx.DB.First(&role, user.RoleID).Error; err != nil {
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Role not configured", Err: err})
		return
	}

	token, session, err := issueSession(ctx.DB, user, ctx.CI)
	if err != nil {
		util.LogLoginFailure(util.LoginParams{Email: ctx.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent, Reason: "session creation failed"})
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	// Mirror the session in Redis (best-effort).
	_ = util.AddSessionToUserSet(session.UserID, user.RoleID, token, time.Until(session.ExpiresAt))

	util.LogLoginSuccess(util.LoginParams{UserID: user.ID, Email: user.Email, IP: ctx.CI.IP, UserAgent: ctx.CI.Agent})
	util.CallSuccessOK(ctx.C, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: token, Role: role.Name, UserID: user.ID},
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the caller's session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      400 {object} util.APIResponse "Session not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/logout [delete]
func Logout(c *gin.Context) {
	sessionToken := middleware.ExtractToken(c)
	if sessionToken == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Session token not provided",
			Err: fmt.Errorf("session token not provided"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var session model.Session
	if err := db.Where("session_token = ?", sessionToken).First(&session).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}

	var user model.User
	if err := db.First(&user, session.UserID).Error; err == nil {
		util.LogLogout(util.LoginParams{UserID: user.ID, Email: user.Email, IP: c.ClientIP(), UserAgent: c.Request.UserAgent()})
	}

	if err := db.Where("session_token = ?", sessionToken).Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}

	_ = util.RemoveSessionTokenFromUserSet(session.UserID, sessionToken)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}
