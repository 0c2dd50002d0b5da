package response

// Intent is the subset of the processor's payment-intent payload the
// storefront hands back to the client.
type Intent struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	TransferGroup string `json:"transfer_group"`
}
