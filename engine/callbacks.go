package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/jobtrack/core"
)

// CallbackType defines the lifecycle points of a turn where callbacks run.
//
// Callbacks observe a turn without changing it. They run synchronously on
// the turn's goroutine; an error is logged and never fails the turn.
//
// Available callback types:
//   - AfterClassify: once the intent is known, before any store access
//   - OnWriteFailure: for every item whose record write failed
//   - AfterTurn: after the session was saved
type CallbackType string

const (
	// CallbackAfterClassify is triggered after rule or model classification.
	CallbackAfterClassify CallbackType = "after_classify"

	// CallbackOnWriteFailure is triggered for every failed record write.
	CallbackOnWriteFailure CallbackType = "on_write_failure"

	// CallbackAfterTurn is triggered once the outcome is final.
	CallbackAfterTurn CallbackType = "after_turn"
)

// CallbackContext carries what a callback may inspect. Fields not relevant
// to the callback type are zero.
type CallbackContext struct {
	// Message is the inbound message of the turn.
	Message core.Message

	// Classification is set from AfterClassify on.
	Classification *core.Classification

	// Item is the failed item for OnWriteFailure.
	Item *core.ItemResult

	// Err is the store error for OnWriteFailure.
	Err error

	// Outcome is set for AfterTurn.
	Outcome *core.Outcome

	CallbackType CallbackType
}

// Callback is a hook executed at one lifecycle point.
type Callback interface {
	Type() CallbackType

	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback adapts a function to the Callback interface.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a callback of callbackType running fn.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager keeps callbacks by type. It is safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds callback after the ones already registered for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback of callbackType in registration
// order and returns the errors joined.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType

	var errs []error
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s callback: %w", callbackType, err))
		}
	}
	return errors.Join(errs...)
}

// LoggingCallback hands a one line summary of every callback to logger.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a logging callback for callbackType.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	message := fmt.Sprintf("[%s] owner=%s conversation=%s", c.callbackType,
		callbackCtx.Message.OwnerID, callbackCtx.Message.ConversationID)
	switch {
	case callbackCtx.Outcome != nil:
		message += fmt.Sprintf(" action=%s", callbackCtx.Outcome.Action)
	case callbackCtx.Item != nil:
		message += fmt.Sprintf(" company=%s state=%s", callbackCtx.Item.Company, callbackCtx.Item.State)
	case callbackCtx.Classification != nil:
		message += fmt.Sprintf(" intent=%s", callbackCtx.Classification.Intent)
	}
	c.logger(message)
	return nil
}
