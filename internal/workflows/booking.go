package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BookingInput is the input for the booking notification workflow.
type BookingInput struct {
	BookingID     string
	InterpreterID string
	ContactEmail  string
}

// BookingWorkflow orchestrates delivering a new booking request to the
// interpreter and acknowledging the requester. If the interpreter can never
// be reached, the booking is cancelled and the requester told to try another
// interpreter (saga compensation).
func BookingWorkflow(ctx workflow.Context, input BookingInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting booking workflow", "bookingID", input.BookingID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Deliver the request to the interpreter
	err := workflow.ExecuteActivity(ctx, "NotifyInterpreter", input.BookingID).Get(ctx, nil)
	if err != nil {
		logger.Warn("interpreter unreachable, cancelling booking", "error", err)
		// Compensate: release the pending booking
		_ = workflow.ExecuteActivity(ctx, "CancelBooking", input.BookingID).Get(ctx, nil)
		_ = workflow.ExecuteActivity(ctx, "NotifyRequesterFailed", input.BookingID, input.ContactEmail).Get(ctx, nil)
		return err
	}

	// Step 2: Acknowledge the requester
	err = workflow.ExecuteActivity(ctx, "NotifyRequesterPending", input.BookingID, input.ContactEmail).Get(ctx, nil)
	if err != nil {
		// The interpreter already has the request; log and carry on.
		logger.Warn("requester acknowledgement failed", "error", err)
	}

	logger.Info("Booking request delivered", "bookingID", input.BookingID)
	return nil
}
