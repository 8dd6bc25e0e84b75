package quote

import "time"

type Status string

const (
	StatusPending Status = "pending"

	MessageUnread Status = "unread"

	defaultSubject = "Общо запитване"
)

type Request struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	ServiceType string    `json:"serviceType"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	Timeline    string    `json:"timeline"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RequestInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	ServiceType string `json:"serviceType"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Timeline    string `json:"timeline"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
