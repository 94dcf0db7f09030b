package endpoint

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

type UpdateBedsRequest struct {
	Category string `json:"category"`
	Type     string `json:"type"`
}

const (
	bedUpdateInc = "inc"
	bedUpdateDec = "dec"
)

// bedColumns returns the occupied and total column names for a bed category.
func bedColumns(category string) (occupied string, total string) {
	prefix := strings.ToLower(category)
	return prefix + "_occupied", prefix + "_total"
}

// hospitalForAdmin loads the hospital administered by the given user.
func hospitalForAdmin(db *gorm.DB, adminID uint) (model.Hospital, error) {
	var hospital model.Hospital
	err := db.Where("admin_id = ?", adminID).First(&hospital).Error
	return hospital, err
}

// UpdateBeds godoc
// @Summary      Adjust bed occupancy
// @Description  Atomically increments or decrements the occupied count for a bed category
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateBedsRequest true "Bed category and adjustment type"
// @Success      200 {object} util.APIResponse{data=model.Hospital} "Bed count updated"
// @Failure      400 {object} util.APIResponse "Invalid category, type or occupancy out of range"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "No hospital for this administrator"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /hospitals/beds [patch]
func UpdateBeds(c *gin.Context) {
	var req UpdateBedsRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	req.Category = strings.ToLower(req.Category)
	if !model.ValidBedCategory(req.Category) {
		err := fmt.Errorf("unknown bed category %q", req.Category)
		util.CallUserError(c, util.APIErrorParams{Msg: "Category must be one of icu, general or emergency", Err: err})
		return
	}
	if req.Type != bedUpdateInc && req.Type != bedUpdateDec {
		err := fmt.Errorf("unknown update type %q", req.Type)
		util.CallUserError(c, util.APIErrorParams{Msg: "Type must be inc or dec", Err: err})
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

	hospital, err := hospitalForAdmin(db, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "No hospital found for this administrator", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve hospital", Err: err})
		return
	}

	occupiedCol, totalCol := bedColumns(req.Category)

	// Conditional update so concurrent requests can never push occupancy
	// below zero or above the total. RowsAffected tells us whether the
	// guard held at commit time.
	var tx *gorm.DB
	if req.Type == bedUpdateInc {
		tx = db.Model(&model.Hospital{}).
			Where("id = ? AND "+occupiedCol+" < "+totalCol, hospital.ID).
			Update(occupiedCol, gorm.Expr(occupiedCol+" + 1"))
	} else {
		tx = db.Model(&model.Hospital{}).
			Where("id = ? AND "+occupiedCol+" > 0", hospital.ID).
			Update(occupiedCol, gorm.Expr(occupiedCol+" - 1"))
	}
	if tx.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update bed count", Err: tx.Error})
		return
	}
	if tx.RowsAffected == 0 {
		err := fmt.Errorf("bed occupancy for %s is already at its limit", req.Category)
		util.CallUserError(c, util.APIErrorParams{Msg: "Bed occupancy out of range", Err: err})
		return
	}

	if err := db.First(&hospital, hospital.ID).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve hospital", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Bed count updated", Data: hospital})
}

// GetHospital godoc
// @Summary      Get the caller's hospital
// @Description  Returns the hospital administered by the authenticated user
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=model.Hospital} "Hospital retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "No hospital for this administrator"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /hospitals/me [get]
func GetHospital(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	hospital, err := hospitalForAdmin(db, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "No hospital found for this administrator", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve hospital", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Hospital retrieved", Data: hospital})
}

type HandoffSummaryRequest struct {
	Reports []string `json:"reports"`
}

// SummarizeHandoffs godoc
// @Summary      Summarize shift handoff reports
// @Description  Forwards the reports to the AI service and returns a shift summary
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body HandoffSummaryRequest true "Handoff report texts"
// @Success      200 {object} util.APIResponse "Summary generated"
// @Failure      400 {object} util.APIResponse "No reports provided"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "AI service failure"
// @Router       /hospitals/handoff-summary [post]
func SummarizeHandoffs(c *gin.Context) {
	var req HandoffSummaryRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if len(req.Reports) == 0 {
		err := fmt.Errorf("reports array is empty")
		util.CallUserError(c, util.APIErrorParams{Msg: "At least one report is required", Err: err})
		return
	}

	summary, err := aiClient().SummarizeHandoffs(c.Request.Context(), req.Reports)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate summary from AI service", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Summary generated",
		Data: map[string]string{"summary": summary},
	})
}
