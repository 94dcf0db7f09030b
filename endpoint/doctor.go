package endpoint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

// DoctorWithHospital is a doctor row joined with its hospital's name.
type DoctorWithHospital struct {
	model.Doctor
	HospitalName string `json:"hospital_name" gorm:"column:hospital_name"`
}

// encodeSlots parses, sorts and re-encodes RFC3339 slot timestamps as a JSON
// array. The stored order is always chronological.
func encodeSlots(slots []string) (datatypes.JSON, error) {
	if len(slots) == 0 {
		return datatypes.JSON([]byte("[]")), nil
	}
	parsed := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("slot %q is not an RFC3339 timestamp: %w", s, err)
		}
		parsed = append(parsed, ts)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	encoded := make([]string, len(parsed))
	for i, ts := range parsed {
		encoded[i] = ts.Format(time.RFC3339)
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ListDoctors godoc
// @Summary      List all doctors
// @Description  Public listing of doctor profiles with their hospital names
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]DoctorWithHospital} "Doctors retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctors [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctors []DoctorWithHospital
	err := db.Table("doctors").
		Select("doctors.*, hospitals.name as hospital_name").
		Joins("LEFT JOIN hospitals ON doctors.hospital_id = hospitals.id").
		Where("doctors.deleted_at IS NULL").
		Find(&doctors).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctors", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctors retrieved",
		Data: map[string]interface{}{"total": len(doctors), "doctors": doctors},
	})
}

// GetDoctor godoc
// @Summary      Get a doctor by ID
// @Description  Public doctor profile with the hospital name
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=DoctorWithHospital} "Doctor retrieved"
// @Failure      400 {object} util.APIResponse "Invalid doctor id"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctors/{id} [get]
func GetDoctor(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor DoctorWithHospital
	err = db.Table("doctors").
		Select("doctors.*, hospitals.name as hospital_name").
		Joins("LEFT JOIN hospitals ON doctors.hospital_id = hospitals.id").
		Where("doctors.id = ? AND doctors.deleted_at IS NULL", id).
		First(&doctor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor retrieved", Data: doctor})
}

type UpdateDoctorProfileRequest struct {
	Specialization  string   `json:"specialization"`
	Qualifications  string   `json:"qualifications"`
	ExperienceYears *int     `json:"experience_years"`
	AvailableSlots  []string `json:"available_slots"`
	ProfileImage    string   `json:"profile_image"`
}

// applyProfileUpdates copies the provided fields onto the doctor model.
func applyProfileUpdates(doctor *model.Doctor, req UpdateDoctorProfileRequest) error {
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Qualifications != "" {
		doctor.Qualifications = req.Qualifications
	}
	if req.ExperienceYears != nil {
		if *req.ExperienceYears < 0 {
			return fmt.Errorf("experience years must not be negative")
		}
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.AvailableSlots != nil {
		slots, err := encodeSlots(req.AvailableSlots)
		if err != nil {
			return err
		}
		doctor.AvailableSlots = slots
	}
	if req.ProfileImage != "" {
		doctor.ProfileImage = req.ProfileImage
	}
	return nil
}

// UpdateDoctorProfile godoc
// @Summary      Update the caller's doctor profile
// @Description  Doctor-role only; updates specialization, qualifications, experience, slots and image
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateDoctorProfileRequest true "Profile fields to update"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Profile updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "Doctor profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctors/profile [put]
func UpdateDoctorProfile(c *gin.Context) {
	var req UpdateDoctorProfileRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	var doctor model.Doctor
	if err := db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor profile not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor profile", Err: err})
		return
	}

	if err := applyProfileUpdates(&doctor, req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	if err := db.Save(&doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile updated", Data: doctor})
}

// parseIDParam parses the "id" path parameter into a uint and returns an error if invalid.
func parseIDParam(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("id must be a valid integer")
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return uint(id), nil
}
