package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutri-lens/cmd/api/dto"
	"nutri-lens/cmd/api/services"
)

// GetCurrentUserHandler godoc
// @Summary      Get the current user's health profile
// @Tags         users
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /users/me [get]
func GetCurrentUserHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// OnboardUserHandler godoc
// @Summary      Create the health profile
// @Description  Daily calorie needs are computed by the server.
// @Tags         users
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Param        body  body  dto.UserProfileRequest  true  "Profile"
// @Produce      json
// @Success      201  {object}  models.User
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /users/me [post]
func OnboardUserHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UserProfileRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.Onboard(c.Request.Context(), currentUser(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// UpdateUserHandler godoc
// @Summary      Update the health profile
// @Tags         users
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Param        body  body  dto.UserProfileRequest  true  "Profile"
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /users/me [put]
func UpdateUserHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UserProfileRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.Update(c.Request.Context(), currentUser(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// LogConsumptionHandler godoc
// @Summary      Log a consumption
// @Tags         consumptions
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Param        body  body  dto.ConsumptionRequest  true  "Consumption"
// @Produce      json
// @Success      201  {object}  models.Consumption
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /consumptions [post]
func LogConsumptionHandler(svc *services.ConsumptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ConsumptionRequest
		if !bindJSON(c, &req) {
			return
		}
		rec, err := svc.Log(c.Request.Context(), currentUser(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

// GetLatestAnalysisHandler godoc
// @Summary      Latest consumption analysis
// @Tags         users
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Produce      json
// @Success      200  {object}  models.ConsumptionAnalysis
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /users/me/analysis [get]
func GetLatestAnalysisHandler(svc *services.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.Latest(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// CronAnalyzeHandler godoc
// @Summary      Analyze consumption for every user
// @Description  Authorization: Bearer <CRON_SECRET>
// @Tags         cron
// @Produce      json
// @Success      200  {object}  dto.CronAnalyzeResponse
// @Failure      401  {object}  object{error=string}
// @Router       /cron/analyze [get]
func CronAnalyzeHandler(svc *services.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.RunSweep(c.Request.Context())
		if err != nil {
			respondSweepFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.CronAnalyzeResponse{
			Success:  true,
			Analyzed: res.Analyzed,
			Skipped:  res.Skipped,
			Failed:   res.Failed,
		})
	}
}

// respondSweepFailure reports a sweep that could not start in the cron response shape.
func respondSweepFailure(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}
