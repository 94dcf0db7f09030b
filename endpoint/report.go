package endpoint

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

var (
	uploadsDirMu sync.RWMutex
	uploadsDir   = "uploads"
)

// SetUploadsDir sets the directory where uploaded report files are stored.
func SetUploadsDir(dir string) {
	uploadsDirMu.Lock()
	defer uploadsDirMu.Unlock()
	if dir != "" {
		uploadsDir = dir
	}
}

func getUploadsDir() string {
	uploadsDirMu.RLock()
	defer uploadsDirMu.RUnlock()
	return uploadsDir
}

var allowedReportExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

// AnalyzeReport godoc
// @Summary      Upload and analyze a medical report
// @Description  Stores the uploaded file, records it for the caller and returns the AI analysis
// @Tags         Report
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        report formData file true "Report file (pdf, png or jpg)"
// @Success      201 {object} util.APIResponse "Report analyzed"
// @Failure      400 {object} util.APIResponse "Missing file or unsupported type"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Storage or AI service failure"
// @Router       /reports/analyze [post]
func AnalyzeReport(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	file, err := c.FormFile("report")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "A report file is required", Err: err})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !util.Contains(ext, allowedReportExtensions) {
		typeErr := fmt.Errorf("unsupported file extension %q", ext)
		util.CallUserError(c, util.APIErrorParams{Msg: "Only pdf, png and jpg reports are supported", Err: typeErr})
		return
	}

	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(getUploadsDir(), storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store report file", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	fileURL := "/uploads/" + storedName
	report := model.HealthReport{
		UserID:     userID,
		ReportName: file.Filename,
		FileURL:    fileURL,
		FileType:   strings.TrimPrefix(ext, "."),
	}
	if err := db.Create(&report).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record report", Err: err})
		return
	}

	analysis, err := aiClient().AnalyzeReport(c.Request.Context(), fileURL)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to analyze report with AI service", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Report analyzed",
		Data: map[string]interface{}{"report": report, "analysis": analysis},
	})
}

// ListReports godoc
// @Summary      List the caller's reports
// @Description  Returns the authenticated user's uploaded health reports, newest first
// @Tags         Report
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.HealthReport} "Reports retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /reports [get]
func ListReports(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var reports []model.HealthReport
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve reports", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Reports retrieved",
		Data: map[string]interface{}{"total": len(reports), "reports": reports},
	})
}
