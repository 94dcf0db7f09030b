package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

type CreateAppointmentRequest struct {
	PatientName string `json:"patient_name" example:"John Doe"`
	Phone       string `json:"phone" example:"+1-555-0100"`
	DoctorID    uint   `json:"doctor_id" example:"1"`
	Date        string `json:"date" example:"2025-02-01"`
	Time        string `json:"time" example:"10:30"`
	Type        string `json:"type" example:"checkup"`
	Notes       string `json:"notes"`
}

// validateAppointmentRequest checks that every required booking field is set.
func validateAppointmentRequest(req CreateAppointmentRequest) error {
	requiredFields := map[string]string{
		"patient_name": req.PatientName,
		"phone":        req.Phone,
		"date":         req.Date,
		"time":         req.Time,
	}
	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is empty or missing", fieldName)
		}
	}
	if req.DoctorID == 0 {
		return fmt.Errorf("doctor_id is empty or missing")
	}
	return nil
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Create an appointment with a doctor. Open to guests; a valid bearer credential links the booking to the caller.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        request body CreateAppointmentRequest true "Booking details"
// @Success      201 {object} util.APIResponse{data=model.Appointment} "Appointment created"
// @Failure      400 {object} util.APIResponse "Missing required field"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments [post]
func CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if err := validateAppointmentRequest(req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "All fields are required", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	if err := db.First(&doctor, req.DoctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	appointment := model.Appointment{
		PatientName: util.NormalizeName(req.PatientName),
		Phone:       req.Phone,
		DoctorID:    doctor.ID,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Status:      model.AppointmentScheduled,
		Notes:       req.Notes,
	}
	if appointment.Type == "" {
		appointment.Type = "checkup"
	}
	// Link the booking to the authenticated user when a credential was sent.
	if userID, authed := middleware.GetUserID(c); authed {
		appointment.UserID = &userID
	}

	if err := db.Create(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Appointment created", Data: appointment})
}

// doctorAppointments returns appointments referencing the caller's doctor
// profile, or an empty list when no profile exists.
func doctorAppointments(db *gorm.DB, userID uint) ([]model.Appointment, error) {
	var doctor model.Doctor
	err := db.Where("user_id = ?", userID).First(&doctor).Error
	if err == gorm.ErrRecordNotFound {
		return []model.Appointment{}, nil
	}
	if err != nil {
		return nil, err
	}

	var appointments []model.Appointment
	if err := db.Where("doctor_id = ?", doctor.ID).Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// userAppointments returns appointments linked to the caller's user id.
func userAppointments(db *gorm.DB, userID uint) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := db.Where("user_id = ?", userID).Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListAppointments godoc
// @Summary      List the caller's appointments
// @Description  A doctor sees appointments for their own profile; any other caller sees bookings linked to their account.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments [get]
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	roleName, _ := middleware.GetRoleName(c)

	var appointments []model.Appointment
	var err error
	if roleName == model.RoleDoctor {
		appointments, err = doctorAppointments(db, userID)
	} else {
		appointments, err = userAppointments(db, userID)
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointments retrieved",
		Data: appointments,
	})
}
