package domain

// HealthProfile is the structured context sent along with a consultation query.
type HealthProfile struct {
	Age           *int     `json:"age" validate:"omitempty,min=0,max=130"`
	Gender        string   `json:"gender" validate:"omitempty,max=32"`
	HeightCm      *float64 `json:"height_cm" validate:"omitempty,gt=0,lte=300"`
	WeightKg      *float64 `json:"weight_kg" validate:"omitempty,gt=0,lte=500"`
	Conditions    []string `json:"conditions" validate:"max=20,dive,max=100"`
	Medications   []string `json:"medications" validate:"max=20,dive,max=100"`
	ActivityLevel string   `json:"activity_level" validate:"omitempty,oneof=sedentary light moderate active very_active"`
}

type ConsultRequest struct {
	Profile HealthProfile `json:"profile"`
	Query   string        `json:"query" validate:"required,max=2000"`
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=30,dive"`
}
