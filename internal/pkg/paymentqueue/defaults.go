package paymentqueue

import (
	"github.com/shopfox/ShopFox/app/repository"
	"github.com/shopfox/ShopFox/internal/pkg/mail"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
)

// NewDefaultProcessor wires a processor from the global repository factory
// and the environment-configured provider client and mailer.
func NewDefaultProcessor() *Processor {
	repos := repository.GetGlobalRepositories()
	return NewProcessor(
		repos.PaymentQueue,
		repos.DeadLetter,
		repos.Order,
		payments.NewClientFromEnv(),
		mail.NewSMTPMailer(),
		cacheCounter{},
	)
}

// NewDefaultEnqueuer wires an enqueuer from the global repository factory.
func NewDefaultEnqueuer() *Enqueuer {
	return NewEnqueuer(repository.GetGlobalRepositories().PaymentQueue)
}

// NewDefaultReconciler wires a reconciler from the global repository factory.
func NewDefaultReconciler() *Reconciler {
	repos := repository.GetGlobalRepositories()
	return NewReconciler(NewDefaultProcessor(), repos.PaymentQueue, repos.DeadLetter, repos.Reconciliation)
}
