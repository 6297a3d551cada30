package handler

import "github.com/shopspring/decimal"

// RegisterPatientRequest represents a request to register a new patient
type RegisterPatientRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Age            int    `json:"age" binding:"required,gt=0,lt=150"`
	Gender         string `json:"gender" binding:"required,oneof=Male Female"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medical_history"`
}

// UpdatePatientRequest represents a request to update a patient's record
type UpdatePatientRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Age            int    `json:"age" binding:"required,gt=0,lt=150"`
	Gender         string `json:"gender" binding:"required,oneof=Male Female"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medical_history"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ScheduleAppointmentRequest represents a request to book a visit
type ScheduleAppointmentRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Notes     string `json:"notes"`
}

// UpdateAppointmentStatusRequest represents a request to move an appointment
// through its lifecycle
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Scheduled Notified InProgress Completed Cancelled"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID         string          `json:"id"`
	PatientID  string          `json:"patient_id"`
	Date       string          `json:"date"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// AddPaymentRequest represents a request to record a payment. AppointmentID is
// optional; omitting it records a patient-level credit.
type AddPaymentRequest struct {
	PatientID     string          `json:"patient_id" binding:"required,uuid"`
	AppointmentID string          `json:"appointment_id" binding:"omitempty,uuid"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   string          `json:"payment_date" binding:"required"`
	Notes         string          `json:"notes"`
}

// PaymentResponse represents a ledger entry in API responses
type PaymentResponse struct {
	ID            string          `json:"id"`
	PatientID     string          `json:"patient_id"`
	PatientName   string          `json:"patient_name,omitempty"`
	AppointmentID string          `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     string          `json:"created_at"`
}

// PaymentSummaryResponse represents a patient's financial position
type PaymentSummaryResponse struct {
	PatientID        string            `json:"patient_id"`
	PatientName      string            `json:"patient_name"`
	TotalCost        decimal.Decimal   `json:"total_cost"`
	TotalPaid        decimal.Decimal   `json:"total_paid"`
	RemainingBalance decimal.Decimal   `json:"remaining_balance"`
	Payments         []PaymentResponse `json:"payments,omitempty"`
}

// RecalculateAllResponse reports the outcome of a full reconciliation sweep
type RecalculateAllResponse struct {
	PatientsProcessed int `json:"patients_processed"`
}

// TreatmentItemRequest represents one line of a new treatment plan
type TreatmentItemRequest struct {
	PriceListItemID string `json:"price_list_item_id" binding:"required,uuid"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
}

// CreateTreatmentPlanRequest represents a request to create a treatment plan.
// At most one discount applies; a percentage takes precedence when both are set.
type CreateTreatmentPlanRequest struct {
	PatientID          string                 `json:"patient_id" binding:"required,uuid"`
	Title              string                 `json:"title" binding:"required"`
	Items              []TreatmentItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountPercentage *decimal.Decimal       `json:"discount_percentage,omitempty"`
	DiscountAmount     *decimal.Decimal       `json:"discount_amount,omitempty"`
}

// TreatmentItemResponse represents a plan line in API responses
type TreatmentItemResponse struct {
	ID              string          `json:"id"`
	PriceListItemID string          `json:"price_list_item_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// TreatmentPlanResponse represents a treatment plan in API responses
type TreatmentPlanResponse struct {
	ID        string                  `json:"id"`
	PatientID string                  `json:"patient_id"`
	Title     string                  `json:"title"`
	Items     []TreatmentItemResponse `json:"items"`
	TotalCost decimal.Decimal         `json:"total_cost"`
	CreatedAt string                  `json:"created_at"`
}

// PriceListItemRequest represents a request to create or update a price list item
type PriceListItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category"`
	DefaultPrice decimal.Decimal `json:"default_price" binding:"required"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// PriceListItemResponse represents a price list item in API responses
type PriceListItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// MonthRevenueResponse represents one calendar month in the yearly revenue
// report. All twelve months are always present.
type MonthRevenueResponse struct {
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// MonthCountResponse represents one calendar month in a yearly count report
type MonthCountResponse struct {
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Count     int    `json:"count"`
}

// RevenueResponse represents a revenue total in API responses
type RevenueResponse struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// NotificationLogResponse represents a delivered notification in API responses
type NotificationLogResponse struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
