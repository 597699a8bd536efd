// Package models holds the vehicle-insurance data model shared by the
// training pipeline and the prediction server.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RawColumns is the feature-store schema, in CSV column order.
var RawColumns = []string{
	"id",
	"Gender",
	"Age",
	"Driving_License",
	"Region_Code",
	"Previously_Insured",
	"Vehicle_Age",
	"Vehicle_Damage",
	"Annual_Premium",
	"Policy_Sales_Channel",
	"Vintage",
	"Response",
}

// FeatureColumns is the engineered feature vector layout. Training and
// inference must agree on this order.
var FeatureColumns = []string{
	"Gender",
	"Age",
	"Driving_License",
	"Region_Code",
	"Previously_Insured",
	"Annual_Premium",
	"Policy_Sales_Channel",
	"Vintage",
	"Vehicle_Age_lt_1_Year",
	"Vehicle_Age_gt_2_Years",
	"Vehicle_Damage_Yes",
}

// NumFeatures is the engineered feature vector width.
const NumFeatures = 11

// VehicleRecord is one raw feature-store row.
type VehicleRecord struct {
	ID                 int64   `json:"id"`
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
	Response           int     `json:"Response"`
}

// Features applies the feature engineering and returns the unscaled vector
// in FeatureColumns order. Gender maps Male→1 Female→0; Vehicle_Age and
// Vehicle_Damage become dummy indicators.
func (r VehicleRecord) Features() []float64 {
	var gender float64
	if r.Gender == "Male" {
		gender = 1
	}

	var ageLt1, ageGt2 float64
	switch r.VehicleAge {
	case "< 1 Year":
		ageLt1 = 1
	case "> 2 Years":
		ageGt2 = 1
	}

	var damageYes float64
	if r.VehicleDamage == "Yes" {
		damageYes = 1
	}

	return []float64{
		gender,
		float64(r.Age),
		float64(r.DrivingLicense),
		r.RegionCode,
		float64(r.PreviouslyInsured),
		r.AnnualPremium,
		r.PolicySalesChannel,
		float64(r.Vintage),
		ageLt1,
		ageGt2,
		damageYes,
	}
}

// ToMap returns the record as a generic document, keyed by RawColumns names.
func (r VehicleRecord) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":                   r.ID,
		"Gender":               r.Gender,
		"Age":                  r.Age,
		"Driving_License":      r.DrivingLicense,
		"Region_Code":          r.RegionCode,
		"Previously_Insured":   r.PreviouslyInsured,
		"Vehicle_Age":          r.VehicleAge,
		"Vehicle_Damage":       r.VehicleDamage,
		"Annual_Premium":       r.AnnualPremium,
		"Policy_Sales_Channel": r.PolicySalesChannel,
		"Vintage":              r.Vintage,
		"Response":             r.Response,
	}
}

// RecordFromMap builds a VehicleRecord from a generic feature-store document.
// Literal "na" values are treated as missing and rejected.
func RecordFromMap(doc map[string]interface{}) (VehicleRecord, error) {
	var rec VehicleRecord
	var err error

	if rec.ID, err = toInt64(doc["id"]); err != nil {
		return rec, fmt.Errorf("field id: %w", err)
	}
	if rec.Gender, err = toString(doc["Gender"]); err != nil {
		return rec, fmt.Errorf("field Gender: %w", err)
	}
	if rec.Age, err = toInt(doc["Age"]); err != nil {
		return rec, fmt.Errorf("field Age: %w", err)
	}
	if rec.DrivingLicense, err = toInt(doc["Driving_License"]); err != nil {
		return rec, fmt.Errorf("field Driving_License: %w", err)
	}
	if rec.RegionCode, err = toFloat(doc["Region_Code"]); err != nil {
		return rec, fmt.Errorf("field Region_Code: %w", err)
	}
	if rec.PreviouslyInsured, err = toInt(doc["Previously_Insured"]); err != nil {
		return rec, fmt.Errorf("field Previously_Insured: %w", err)
	}
	if rec.VehicleAge, err = toString(doc["Vehicle_Age"]); err != nil {
		return rec, fmt.Errorf("field Vehicle_Age: %w", err)
	}
	if rec.VehicleDamage, err = toString(doc["Vehicle_Damage"]); err != nil {
		return rec, fmt.Errorf("field Vehicle_Damage: %w", err)
	}
	if rec.AnnualPremium, err = toFloat(doc["Annual_Premium"]); err != nil {
		return rec, fmt.Errorf("field Annual_Premium: %w", err)
	}
	if rec.PolicySalesChannel, err = toFloat(doc["Policy_Sales_Channel"]); err != nil {
		return rec, fmt.Errorf("field Policy_Sales_Channel: %w", err)
	}
	if rec.Vintage, err = toInt(doc["Vintage"]); err != nil {
		return rec, fmt.Errorf("field Vintage: %w", err)
	}
	if rec.Response, err = toInt(doc["Response"]); err != nil {
		return rec, fmt.Errorf("field Response: %w", err)
	}

	return rec, nil
}

func toString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	if isMissing(s) {
		return "", fmt.Errorf("missing value")
	}
	return s, nil
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		if isMissing(x) {
			return 0, fmt.Errorf("missing value")
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func toInt(v interface{}) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func toInt64(v interface{}) (int64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func isMissing(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "na") || strings.TrimSpace(s) == ""
}
