package gateway

import "github.com/shopspring/decimal"

// flutterwavePaymentResponse is the response of POST /v3/payments
type flutterwavePaymentResponse struct {
	Status  string `json:"status"` // success or error
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// flutterwaveVerifyResponse is the response of
// GET /v3/transactions/verify_by_reference
type flutterwaveVerifyResponse struct {
	Status  string `json:"status"` // success or error
	Message string `json:"message"`
	Data    struct {
		Status            string          `json:"status"` // successful, failed, pending
		TxRef             string          `json:"tx_ref"`
		Amount            decimal.Decimal `json:"amount"` // major units
		Currency          string          `json:"currency"`
		ProcessorResponse string          `json:"processor_response"`
	} `json:"data"`
}
