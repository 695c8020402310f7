package survey

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Type classifies a property survey.
type Type string

const (
	TypeResidential    Type = "Residential"
	TypeNonResidential Type = "NonResidential"
	TypeMixed          Type = "Mixed"
)

func (t Type) Valid() bool {
	switch t {
	case TypeResidential, TypeNonResidential, TypeMixed:
		return true
	}
	return false
}

// Status of a local survey. A survey starts incomplete and moves to
// submitted only by explicit user action; it never reverts.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusSubmitted  Status = "submitted"
)

// Section selects one of the two per-floor assessment sequences.
type Section string

const (
	SectionResidential    Section = "residential"
	SectionNonResidential Section = "nonResidential"
)

// FloorAssessment is one record per building floor.
type FloorAssessment struct {
	ID                 string  `json:"id"`
	FloorNumber        string  `json:"floorNumber"`
	OccupancyStatus    string  `json:"occupancyStatus,omitempty"`
	ConstructionNature string  `json:"constructionNature,omitempty"`
	CoveredArea        float64 `json:"coveredArea,omitempty"`
	CarpetArea         float64 `json:"carpetArea,omitempty"`
	Usage              string  `json:"usage,omitempty"`
	EstablishmentName  string  `json:"establishmentName,omitempty"`
	LicenseNumber      string  `json:"licenseNumber,omitempty"`
}

// Data is the survey form payload: five required sections plus the
// optional floor sequences. Section bodies stay raw JSON — the forms
// own their field sets, the store only round-trips them.
type Data struct {
	SurveyDetails   json.RawMessage `json:"surveyDetails"`
	PropertyDetails json.RawMessage `json:"propertyDetails"`
	OwnerDetails    json.RawMessage `json:"ownerDetails"`
	LocationDetails json.RawMessage `json:"locationDetails"`
	OtherDetails    json.RawMessage `json:"otherDetails"`

	ResidentialPropertyAssessments    []FloorAssessment `json:"residentialPropertyAssessments,omitempty"`
	NonResidentialPropertyAssessments []FloorAssessment `json:"nonResidentialPropertyAssessments,omitempty"`
}

// Validate checks the five required sections are present.
func (d *Data) Validate() error {
	sections := map[string]json.RawMessage{
		"surveyDetails":   d.SurveyDetails,
		"propertyDetails": d.PropertyDetails,
		"ownerDetails":    d.OwnerDetails,
		"locationDetails": d.LocationDetails,
		"otherDetails":    d.OtherDetails,
	}
	for name, raw := range sections {
		if len(raw) == 0 || string(raw) == "null" {
			return fmt.Errorf("%w: missing section %s", ErrInvalidInput, name)
		}
	}
	return nil
}

// Floors returns the assessment slice for the section.
func (d *Data) Floors(section Section) []FloorAssessment {
	if section == SectionNonResidential {
		return d.NonResidentialPropertyAssessments
	}
	return d.ResidentialPropertyAssessments
}

func (d *Data) setFloors(section Section, floors []FloorAssessment) {
	if section == SectionNonResidential {
		d.NonResidentialPropertyAssessments = floors
		return
	}
	d.ResidentialPropertyAssessments = floors
}

// Clone deep-copies the payload so transformations before upload never
// touch the stored object.
func (d *Data) Clone() Data {
	out := Data{
		SurveyDetails:   append(json.RawMessage(nil), d.SurveyDetails...),
		PropertyDetails: append(json.RawMessage(nil), d.PropertyDetails...),
		OwnerDetails:    append(json.RawMessage(nil), d.OwnerDetails...),
		LocationDetails: append(json.RawMessage(nil), d.LocationDetails...),
		OtherDetails:    append(json.RawMessage(nil), d.OtherDetails...),
	}
	if d.ResidentialPropertyAssessments != nil {
		out.ResidentialPropertyAssessments = append([]FloorAssessment(nil), d.ResidentialPropertyAssessments...)
	}
	if d.NonResidentialPropertyAssessments != nil {
		out.NonResidentialPropertyAssessments = append([]FloorAssessment(nil), d.NonResidentialPropertyAssessments...)
	}
	return out
}

// LocalSurvey is the unit of offline work. Only these fields are ever
// persisted; anything else a caller carries is dropped on save.
type LocalSurvey struct {
	ID         string    `json:"id"`
	SurveyType Type      `json:"surveyType"`
	Data       Data      `json:"data"`
	Status     Status    `json:"status"`
	Synced     bool      `json:"synced"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewID returns a device-unique survey identifier.
func NewID() string {
	return fmt.Sprintf("survey_%d_%s", time.Now().UnixMilli(), randSuffix())
}

// NewFloorID returns a floor identifier, unique within its survey.
func NewFloorID() string {
	return fmt.Sprintf("floor_%d_%s", time.Now().UnixMilli(), randSuffix())
}

func randSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(buf)
}
