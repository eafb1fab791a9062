package domain

import "time"

// The types below mirror backend payloads. The portal does not validate them.

// PolicyStatus is the lifecycle state reported by the backend for a policy.
type PolicyStatus string

const (
	PolicyPending  PolicyStatus = "pending"
	PolicyActive   PolicyStatus = "active"
	PolicyRejected PolicyStatus = "rejected"
	PolicyExpired  PolicyStatus = "expired"
)

// Policy is an insurance policy covering a farm.
type Policy struct {
	ID             string       `json:"id"`
	PolicyNumber   string       `json:"policyNumber,omitempty"`
	FarmerID       string       `json:"farmerId,omitempty"`
	FarmID         string       `json:"farmId,omitempty"`
	CropType       string       `json:"cropType,omitempty"`
	CoverageAmount float64      `json:"coverageAmount,omitempty"`
	Premium        float64      `json:"premium,omitempty"`
	Status         PolicyStatus `json:"status,omitempty"`
	StartDate      *time.Time   `json:"startDate,omitempty"`
	EndDate        *time.Time   `json:"endDate,omitempty"`
}

// ClaimStatus is the processing state of a claim.
type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "submitted"
	ClaimUnderReview ClaimStatus = "under_review"
	ClaimApproved    ClaimStatus = "approved"
	ClaimRejected    ClaimStatus = "rejected"
	ClaimPaid        ClaimStatus = "paid"
)

// Claim is a loss report filed against a policy.
type Claim struct {
	ID          string      `json:"id"`
	PolicyID    string      `json:"policyId,omitempty"`
	FarmerID    string      `json:"farmerId,omitempty"`
	LossType    string      `json:"lossType,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      float64     `json:"amount,omitempty"`
	Status      ClaimStatus `json:"status,omitempty"`
	FiledAt     *time.Time  `json:"filedAt,omitempty"`
}

// Assessment is a field inspection of a claim or a farm.
type Assessment struct {
	ID         string     `json:"id"`
	ClaimID    string     `json:"claimId,omitempty"`
	FarmID     string     `json:"farmId,omitempty"`
	AssessorID string     `json:"assessorId,omitempty"`
	Status     string     `json:"status,omitempty"`
	Findings   string     `json:"findings,omitempty"`
	Scheduled  *time.Time `json:"scheduledAt,omitempty"`
}

// MonitoringRecord is one crop-monitoring campaign for an insured farm.
type MonitoringRecord struct {
	ID          string     `json:"id"`
	PolicyID    string     `json:"policyId,omitempty"`
	FarmID      string     `json:"farmId,omitempty"`
	SurveyorID  string     `json:"surveyorId,omitempty"`
	CropHealth  string     `json:"cropHealth,omitempty"`
	Status      string     `json:"status,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AdminStatistics is the platform summary shown on admin and government dashboards.
type AdminStatistics struct {
	TotalUsers     int            `json:"totalUsers"`
	TotalPolicies  int            `json:"totalPolicies"`
	ActivePolicies int            `json:"activePolicies"`
	TotalClaims    int            `json:"totalClaims"`
	PendingClaims  int            `json:"pendingClaims"`
	UsersByRole    map[string]int `json:"usersByRole,omitempty"`
	TotalPremiums  float64        `json:"totalPremiums,omitempty"`
	TotalPayouts   float64        `json:"totalPayouts,omitempty"`
}

// Farm is a registered plot of land.
type Farm struct {
	ID        string  `json:"id"`
	FarmerID  string  `json:"farmerId,omitempty"`
	Name      string  `json:"name,omitempty"`
	CropType  string  `json:"cropType,omitempty"`
	SizeHa    float64 `json:"sizeHectares,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Province  string  `json:"province,omitempty"`
	District  string  `json:"district,omitempty"`
	Sector    string  `json:"sector,omitempty"`
}

// WeatherReport is the current weather at a farm location.
type WeatherReport struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
	WindSpeed   float64 `json:"windSpeed"`
	Conditions  string  `json:"conditions,omitempty"`
}

// AdminUser is a platform account as managed from the admin dashboard.
type AdminUser struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Active      bool   `json:"active"`
}
