package dto

type SubscriptionCheckoutRequest struct {
	Tier string `json:"tier"`
}

type CheckoutResponse struct {
	URL     string `json:"url"`
	Routing string `json:"routing"`
}
