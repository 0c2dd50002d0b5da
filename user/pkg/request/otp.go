package request

type RequestOtp struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
}

type VerifyOtp struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	Code        string `json:"code"        validate:"required,len=6,numeric"`
}
