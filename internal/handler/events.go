package handler

import (
	"context"
	"log"
	"time"

	"github.com/splittab/table-bill-splitting/internal/queue"
	queue_publisher "github.com/splittab/table-bill-splitting/internal/service"
)

// afterSettlement publishes a payment.completed event once the
// settlement transaction has committed. Publishing is fire-and-forget:
// it runs off the request goroutine with its own timeout and a broker
// outage never fails the payment response.
func afterSettlement(billID uint64, session string, paymentID uint64, amount, tip int64, itemCount int) {
	ev := queue.PaymentCompletedEvent{
		PaymentID: paymentID,
		BillID:    billID,
		SessionID: session,
		Amount:    amount,
		TipAmount: tip,
		ItemCount: itemCount,
		PaidAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishPaymentCompleted(ctx, ev); err != nil {
			log.Printf("payment event publish failed for payment_id=%d: %v", paymentID, err)
		}
	}()
}
