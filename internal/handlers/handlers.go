package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
	util "github.com/CodeAndHammer/mysterybox/internal/util"
)

func PingHandler(_ *models.App, c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": constants.MessagePong})
}

func RegisterHandler(app *models.App, c *gin.Context) {
	ctx := c.Request.Context()

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.LogWarn("%sBad register request: %v", util.RequestPrefix(ctx), err)
		badRequest(c, constants.MessageBadUsername)
		return
	}

	res, err := app.Game.RegisterPlayer(ctx, req.Username)
	if err != nil {
		internalError(app, c, "register", err)
		return
	}
	if app.Metrics != nil {
		app.Metrics.ObserveRegistration(res.AlreadyRegistered)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"remainingChances":  res.RemainingChances,
		"alreadyRegistered": res.AlreadyRegistered,
	})
}

func SelectBoxHandler(app *models.App, c *gin.Context) {
	ctx := c.Request.Context()

	var req models.SelectBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.LogWarn("%sBad select-box request: %v", util.RequestPrefix(ctx), err)
		badRequest(c, selectBoxValidationMessage(err))
		return
	}

	outcome, err := app.Game.SelectBox(ctx, req.Username, *req.BoxNumber)
	if err != nil {
		internalError(app, c, "select", err)
		return
	}
	if app.Metrics != nil {
		app.Metrics.ObserveSelection(outcome)
	}

	c.JSON(http.StatusOK, SelectionResponse(outcome))
}

// SelectionResponse renders an outcome in the shape the frontend expects.
func SelectionResponse(outcome models.SelectionOutcome) gin.H {
	switch outcome.Status {
	case models.SelectionUnregistered:
		return gin.H{"success": false, "message": constants.MessageNotRegistered}
	case models.SelectionExhausted:
		return gin.H{"success": false, "message": constants.MessageNoChances, "remainingChances": outcome.RemainingChances}
	case models.SelectionDuplicate:
		return gin.H{"success": false, "message": constants.MessageBoxSelected, "remainingChances": outcome.RemainingChances}
	}
	return gin.H{
		"success":          true,
		"reward":           outcome.Won,
		"message":          lo.Ternary(outcome.Won, constants.MessageWon, constants.MessageNoReward),
		"remainingChances": outcome.RemainingChances,
		"rewardsLeft":      outcome.RewardsLeft,
	}
}

func ResetHandler(app *models.App, c *gin.Context) {
	if err := app.Game.Reset(c.Request.Context()); err != nil {
		internalError(app, c, "reset", err)
		return
	}
	if app.Metrics != nil {
		app.Metrics.ObserveReset()
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": constants.MessageGameReset})
}

func HealthzHandler(app *models.App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	app.LimiterMutex.RLock()
	limiterCount := len(app.LimiterMap)
	app.LimiterMutex.RUnlock()

	status := http.StatusOK
	body := gin.H{
		"status":          "ok",
		"env":             lo.Ternary(app.IsProduction, "production", "development"),
		"store":           app.StoreDriver,
		"active_limiters": limiterCount,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}

	state, err := app.Game.Snapshot(c.Request.Context())
	if err != nil {
		util.LogError("%sHealth check could not read game state: %v", util.RequestPrefix(c.Request.Context()), err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	} else {
		body["players"] = len(state.Players)
		body["rewards_left"] = constants.MaxRewards - state.ClaimedRewards
		body["winners"] = len(state.Winners)
	}

	c.JSON(status, body)
}

func selectBoxValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Username" {
				return constants.MessageBadUsername
			}
		}
	}
	return constants.MessageBadBoxNumber
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

func internalError(app *models.App, c *gin.Context, operation string, err error) {
	util.LogError("%s%s failed: %v", util.RequestPrefix(c.Request.Context()), operation, err)
	if app.Metrics != nil {
		app.Metrics.ObserveFailure(operation)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": constants.MessageInternalError})
}
