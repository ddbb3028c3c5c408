package main

// workerMessage is the order event payload sent from API -> SQS -> worker.
type workerMessage struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}
