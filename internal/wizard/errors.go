package wizard

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies user-facing errors.
type Kind int

const (
	// KindValidation means the current step is incomplete.
	KindValidation Kind = iota
	// KindDelivery means the report could not be sent.
	KindDelivery
	// KindRateLimited means a previous submission is still cooling down.
	KindRateLimited
)

// Modal titles.
const (
	TitleWarning        = "Внимание"
	TitleError          = "Ошибка"
	TitleDeliveryFailed = "Сбой отправки"
)

// User-facing messages.
const (
	MsgIncompleteStep   = "Пожалуйста, ответьте на все вопросы на текущем шаге, прежде чем продолжить."
	MsgActiveTimeFormat = "Неверный формат времени. Используйте ЧЧ:ММ-ЧЧ:ММ (напр. 22:00-00:30)"
	MsgMiniGame         = "Распределите все нарушения по наказаниям, чтобы продолжить."
	MsgCaptcha          = "Неверно решена капча."
	MsgIncompleteForm   = "Анкета заполнена не полностью. Проверьте все вопросы."
	MsgDeliveryFailed   = "Не удалось отправить заявку. Пожалуйста, попробуйте еще раз."
	MsgDraftRestored    = "Черновик восстановлен"
)

var (
	// ErrNotFinalStep is returned by Submit before the last step.
	ErrNotFinalStep = errors.New("submit is only allowed on the final step")
	// ErrSubmitInFlight is returned while a submission is being delivered.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrNotEditing is returned for edits outside the editing phase.
	ErrNotEditing = errors.New("wizard is not in the editing phase")
	// ErrNotLanding is returned by Start when the wizard is already running.
	ErrNotLanding = errors.New("wizard already started")
	// ErrUnknownOption is returned for quiz values outside the catalog.
	ErrUnknownOption = errors.New("unknown option")
)

// Error is a recoverable, user-facing failure.
type Error struct {
	Kind    Kind
	Title   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(title, message string) *Error {
	return &Error{Kind: KindValidation, Title: title, Message: message}
}

func deliveryError() *Error {
	return &Error{Kind: KindDelivery, Title: TitleDeliveryFailed, Message: MsgDeliveryFailed}
}

func rateLimitedError(remaining time.Duration) *Error {
	h := int(remaining / time.Hour)
	m := int((remaining % time.Hour) / time.Minute)
	return &Error{
		Kind:    KindRateLimited,
		Title:   TitleWarning,
		Message: fmt.Sprintf("Вы уже отправили заявку. Повторная подача будет доступна через %d ч. %d мин.", h, m),
	}
}

// AsError unwraps a user-facing error.
func AsError(err error) (*Error, bool) {
	var werr *Error
	if errors.As(err, &werr) {
		return werr, true
	}
	return nil, false
}
