package checkout

// Step is the single source of truth for where a checkout session stands and
// which operation is valid next.
type Step string

const (
	StepReview     Step = "review"
	StepPayment    Step = "payment"
	StepProcessing Step = "processing"
	StepConfirmed  Step = "confirmed"
	StepSuccess    Step = "success"
)

// Terminal reports whether the checkout has completed. Processing is never a
// resting state; it always resolves forward to confirmed or back to payment.
func (s Step) Terminal() bool {
	return s == StepSuccess
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}
