package request

type AddItem struct {
	ID       string `validate:"required"       json:"id"`
	Name     string `validate:"required"       json:"name"`
	Size     string `json:"size"`
	Price    string `validate:"required"       json:"price"`
	Quantity int32  `validate:"required,gte=1" json:"quantity"`
	ImageURL string `json:"image_url"`
	Category string `json:"category,omitempty"`
}

type UpdateQuantity struct {
	ID       string `validate:"required" json:"id"`
	Size     string `json:"size"`
	Quantity int32  `json:"quantity"`
}
