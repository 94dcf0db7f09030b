package endpoint

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/util"
)

type SimplifyConsentRequest struct {
	ConsentText string `json:"consent_text"`
}

// SimplifyConsent godoc
// @Summary      Simplify a consent document
// @Description  Forwards the consent text to the AI service and returns plain-language points
// @Tags         Consent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SimplifyConsentRequest true "Consent document text"
// @Success      200 {object} util.APIResponse{data=[]util.SimplifiedPoint} "Consent simplified"
// @Failure      400 {object} util.APIResponse "Missing consent text"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "AI service failure"
// @Router       /consent/simplify [post]
func SimplifyConsent(c *gin.Context) {
	var req SimplifyConsentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if strings.TrimSpace(req.ConsentText) == "" {
		err := fmt.Errorf("consent_text is empty")
		util.CallUserError(c, util.APIErrorParams{Msg: "Consent text is required", Err: err})
		return
	}

	points, err := aiClient().SimplifyConsent(c.Request.Context(), req.ConsentText)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to simplify consent document", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Consent simplified",
		Data: map[string]interface{}{"points": points},
	})
}
