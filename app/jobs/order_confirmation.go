// Package jobs defines the background jobs processed by the queue workers.
package jobs

import (
	"fmt"

	"github.com/bloomkart/bloomkart/pkg/mail"
	"github.com/bloomkart/bloomkart/pkg/queue"
)

// OrderConfirmationJob emails the shopper after checkout. It carries plain
// values rather than models so it survives JSON round-trips through the
// queue driver.
type OrderConfirmationJob struct {
	OrderID string  `json:"order_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Total   float64 `json:"total"`
}

func (j *OrderConfirmationJob) Handle() error {
	greeting := "Hi"
	if j.Name != "" {
		greeting = "Hi " + j.Name
	}

	body := fmt.Sprintf(
		`<h1>Thanks for your order!</h1>
<p>%s, we received your order <strong>%s</strong> totalling <strong>$%.2f</strong>.</p>
<p>We'll let you know as soon as it ships.</p>`,
		greeting, j.OrderID, j.Total,
	)

	return mail.To(j.Email).
		Subject(fmt.Sprintf("Order %s confirmed", j.OrderID)).
		Body(body).
		Send()
}

// Register registers every job type with the queue. Called once at boot.
func Register() {
	queue.Register("OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
}
