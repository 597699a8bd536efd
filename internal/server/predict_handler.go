// internal/server/predict_handler.go
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vehicle-insurance-pipeline/internal/common/database"
	"vehicle-insurance-pipeline/internal/common/metrics"
	"vehicle-insurance-pipeline/internal/models"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// PredictionRequest carries the raw input fields. It mirrors the feature
// store record minus the target label.
type PredictionRequest struct {
	Gender             string  `json:"Gender"`
	Age                int     `json:"Age"`
	DrivingLicense     int     `json:"Driving_License"`
	RegionCode         float64 `json:"Region_Code"`
	PreviouslyInsured  int     `json:"Previously_Insured"`
	VehicleAge         string  `json:"Vehicle_Age"`
	VehicleDamage      string  `json:"Vehicle_Damage"`
	AnnualPremium      float64 `json:"Annual_Premium"`
	PolicySalesChannel float64 `json:"Policy_Sales_Channel"`
	Vintage            int     `json:"Vintage"`
}

// PredictionResponse is the API response. The status strings match the
// customer-facing wording.
type PredictionResponse struct {
	Eligible   bool   `json:"eligible"`
	Prediction int    `json:"prediction"`
	Status     string `json:"status"`
	Cached     bool   `json:"cached"`
}

func statusFor(prediction int) string {
	if prediction == 1 {
		return "Eligible"
	}
	return "Not Eligible"
}

func (app *Application) predictHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	defer func() {
		metrics.PredictionDuration.WithLabelValues("/predict").Observe(time.Since(started).Seconds())
	}()

	var req PredictionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		metrics.PredictionsServed.WithLabelValues("bad_request").Inc()
		app.badRequestResponse(w, r, fmt.Errorf("malformed request body: %w", err))
		return
	}

	if fieldErrors := app.validateRequest(&req); len(fieldErrors) > 0 {
		metrics.PredictionsServed.WithLabelValues("invalid").Inc()
		app.failedValidationResponse(w, r, fieldErrors)
		return
	}

	record := models.VehicleRecord{
		Gender:             req.Gender,
		Age:                req.Age,
		DrivingLicense:     req.DrivingLicense,
		RegionCode:         req.RegionCode,
		PreviouslyInsured:  req.PreviouslyInsured,
		VehicleAge:         req.VehicleAge,
		VehicleDamage:      req.VehicleDamage,
		AnnualPremium:      req.AnnualPremium,
		PolicySalesChannel: req.PolicySalesChannel,
		Vintage:            req.Vintage,
	}
	features := record.Features()

	canonical, err := json.Marshal(features)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	cacheKey := "prediction:" + sha256Hex(canonical)

	ctx := r.Context()

	if app.Cache != nil {
		if cached, err := app.Cache.Get(ctx, cacheKey); err == nil {
			if prediction, err := strconv.Atoi(cached); err == nil {
				metrics.PredictionCacheHits.WithLabelValues("hit").Inc()
				metrics.PredictionsServed.WithLabelValues("ok").Inc()
				app.audit(ctx, canonical, prediction, "cache")
				app.writeJSON(w, http.StatusOK, PredictionResponse{
					Eligible:   prediction == 1,
					Prediction: prediction,
					Status:     statusFor(prediction),
					Cached:     true,
				})
				return
			}
		}
		metrics.PredictionCacheHits.WithLabelValues("miss").Inc()
	}

	model, err := app.Model.Get(ctx)
	if err != nil {
		metrics.PredictionsServed.WithLabelValues("no_model").Inc()
		app.serviceUnavailableResponse(w, r, "no production model available")
		return
	}

	prediction, err := model.Predict(features)
	if err != nil {
		metrics.PredictionsServed.WithLabelValues("error").Inc()
		app.serverErrorResponse(w, r, err)
		return
	}

	if app.Cache != nil {
		ttl := time.Duration(app.Config.Server.CacheTTL) * time.Second
		if err := app.Cache.Set(ctx, cacheKey, strconv.Itoa(prediction), ttl); err != nil {
			app.Logger.Warn("failed to cache prediction", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	app.audit(ctx, canonical, prediction, "model")

	metrics.PredictionsServed.WithLabelValues("ok").Inc()
	app.writeJSON(w, http.StatusOK, PredictionResponse{
		Eligible:   prediction == 1,
		Prediction: prediction,
		Status:     statusFor(prediction),
		Cached:     false,
	})
}

// validateRequest runs the JSON record schema over the request fields.
func (app *Application) validateRequest(req *PredictionRequest) []string {
	doc := map[string]interface{}{
		"Gender":               req.Gender,
		"Age":                  req.Age,
		"Driving_License":      req.DrivingLicense,
		"Region_Code":          req.RegionCode,
		"Previously_Insured":   req.PreviouslyInsured,
		"Vehicle_Age":          req.VehicleAge,
		"Vehicle_Damage":       req.VehicleDamage,
		"Annual_Premium":       req.AnnualPremium,
		"Policy_Sales_Channel": req.PolicySalesChannel,
		"Vintage":              req.Vintage,
	}

	result, err := app.recordSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	var fieldErrors []string
	for _, e := range result.Errors() {
		fieldErrors = append(fieldErrors, e.String())
	}
	return fieldErrors
}

func (app *Application) audit(ctx context.Context, features []byte, prediction int, source string) {
	if app.Audit == nil {
		return
	}

	rec := database.AuditRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Features:   string(features),
		Prediction: prediction,
		Source:     source,
	}
	if err := app.Audit.Insert(ctx, rec); err != nil {
		app.Logger.Error("failed to write prediction audit", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
