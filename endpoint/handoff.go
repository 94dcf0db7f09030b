package endpoint

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/sse"
	"github.com/medisync/hospital-api/util"
)

type CreateHandoffRequest struct {
	NurseID   string `json:"nurse_id"`
	NurseName string `json:"nurse_name"`
	Report    string `json:"report"`
}

// todayRange returns the UTC bounds of the current calendar day.
func todayRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// broadcastBoardEvent pushes a topic-tagged event to all live board subscribers.
func broadcastBoardEvent(topic string, payload interface{}) {
	event := map[string]interface{}{"topic": topic, "payload": payload}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	sse.Board.Broadcast(string(raw))
}

// CreateHandoff godoc
// @Summary      Post a shift handoff note
// @Description  Records a nurse's handoff report and broadcasts it to the live board
// @Tags         Handoff
// @Accept       json
// @Produce      json
// @Param        request body CreateHandoffRequest true "Handoff note"
// @Success      201 {object} util.APIResponse{data=model.HandoffNote} "Handoff recorded"
// @Failure      400 {object} util.APIResponse "Missing required fields"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /handoffs [post]
func CreateHandoff(c *gin.Context) {
	var req CreateHandoffRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	req.NurseName = strings.TrimSpace(req.NurseName)
	req.Report = strings.TrimSpace(req.Report)
	if req.NurseName == "" || req.Report == "" {
		err := fmt.Errorf("nurse_name and report are required")
		util.CallUserError(c, util.APIErrorParams{Msg: "Nurse name and report are required", Err: err})
		return
	}
	if req.NurseID == "" {
		req.NurseID = uuid.NewString()
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	note := model.HandoffNote{
		NurseID:   req.NurseID,
		NurseName: req.NurseName,
		Report:    req.Report,
		Timestamp: time.Now().UTC(),
	}
	if err := db.Create(&note).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record handoff", Err: err})
		return
	}

	broadcastBoardEvent(sse.TopicHandoffs, note)

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Handoff recorded", Data: note})
}

// ListHandoffs godoc
// @Summary      List today's handoff notes
// @Description  Returns the current day's handoff reports, newest first
// @Tags         Handoff
// @Accept       json
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.HandoffNote} "Handoffs retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /handoffs [get]
func ListHandoffs(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	start, end := todayRange()
	var notes []model.HandoffNote
	err := db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp DESC").
		Find(&notes).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve handoffs", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Handoffs retrieved",
		Data: map[string]interface{}{"total": len(notes), "handoffs": notes},
	})
}

type ClockInRequest struct {
	NurseID   string `json:"nurse_id"`
	NurseName string `json:"nurse_name"`
}

// latestAttendanceToday returns the nurse's most recent attendance record for
// the current day, or gorm.ErrRecordNotFound.
func latestAttendanceToday(db *gorm.DB, nurseID string) (model.AttendanceRecord, error) {
	start, end := todayRange()
	var record model.AttendanceRecord
	err := db.Where("nurse_id = ? AND timestamp >= ? AND timestamp < ?", nurseID, start, end).
		Order("timestamp DESC").
		First(&record).Error
	return record, err
}

// ClockIn godoc
// @Summary      Clock a nurse in
// @Description  Opens an attendance session; a nurse already clocked in is rejected
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body ClockInRequest true "Nurse identity"
// @Success      201 {object} util.APIResponse{data=model.AttendanceRecord} "Clocked in"
// @Failure      400 {object} util.APIResponse "Missing name or already clocked in"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /attendance/clock-in [post]
func ClockIn(c *gin.Context) {
	var req ClockInRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	req.NurseName = strings.TrimSpace(req.NurseName)
	if req.NurseName == "" {
		err := fmt.Errorf("nurse_name is required")
		util.CallUserError(c, util.APIErrorParams{Msg: "Nurse name is required", Err: err})
		return
	}
	if req.NurseID == "" {
		req.NurseID = uuid.NewString()
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	latest, err := latestAttendanceToday(db, req.NurseID)
	if err != nil && err != gorm.ErrRecordNotFound {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check attendance", Err: err})
		return
	}
	if err == nil && latest.Status == model.AttendanceClockedIn {
		dupErr := fmt.Errorf("nurse %s is already clocked in", req.NurseID)
		util.CallUserError(c, util.APIErrorParams{Msg: "Already clocked in", Err: dupErr})
		return
	}

	record := model.AttendanceRecord{
		NurseID:   req.NurseID,
		NurseName: req.NurseName,
		Status:    model.AttendanceClockedIn,
		Timestamp: time.Now().UTC(),
	}
	if err := db.Create(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record attendance", Err: err})
		return
	}

	broadcastBoardEvent(sse.TopicAttendance, record)

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Clocked in", Data: record})
}

type ClockOutRequest struct {
	NurseID string `json:"nurse_id"`
}

// ClockOut godoc
// @Summary      Clock a nurse out
// @Description  Closes the nurse's open attendance session; a nurse not clocked in is rejected
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body ClockOutRequest true "Nurse identity"
// @Success      201 {object} util.APIResponse{data=model.AttendanceRecord} "Clocked out"
// @Failure      400 {object} util.APIResponse "Missing nurse id or not clocked in"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /attendance/clock-out [post]
func ClockOut(c *gin.Context) {
	var req ClockOutRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if req.NurseID == "" {
		err := fmt.Errorf("nurse_id is required")
		util.CallUserError(c, util.APIErrorParams{Msg: "Nurse id is required", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	latest, err := latestAttendanceToday(db, req.NurseID)
	if err == gorm.ErrRecordNotFound || (err == nil && latest.Status != model.AttendanceClockedIn) {
		stateErr := fmt.Errorf("nurse %s is not clocked in", req.NurseID)
		util.CallUserError(c, util.APIErrorParams{Msg: "Not clocked in", Err: stateErr})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check attendance", Err: err})
		return
	}

	record := model.AttendanceRecord{
		NurseID:   req.NurseID,
		NurseName: latest.NurseName,
		Status:    model.AttendanceClockedOut,
		Timestamp: time.Now().UTC(),
	}
	if err := db.Create(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record attendance", Err: err})
		return
	}

	broadcastBoardEvent(sse.TopicAttendance, record)

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Clocked out", Data: record})
}

// ListAttendance godoc
// @Summary      List today's attendance records
// @Description  Returns the current day's clock events, newest first
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.AttendanceRecord} "Attendance retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /attendance [get]
func ListAttendance(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	start, end := todayRange()
	var records []model.AttendanceRecord
	err := db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp DESC").
		Find(&records).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve attendance", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Attendance retrieved",
		Data: map[string]interface{}{"total": len(records), "attendance": records},
	})
}
