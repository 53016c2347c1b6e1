package gateway

// paystackVerifyResponse is the response of GET /transaction/verify/{reference}
type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"` // success, failed, abandoned, reversed
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"` // subunits (kobo for NGN)
		Currency        string `json:"currency"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// paystackInitializeResponse is the response of POST /transaction/initialize
type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// paystackErrorResponse is the body of a non-2xx Paystack answer
type paystackErrorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
