package client

import "errors"

// Toast is a user-visible notification raised when a cart mutation finishes.
type Toast struct {
	Title       string
	Description string
	Destructive bool
}

type Notifier interface {
	Notify(Toast)
}

type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

type NopNotifier struct{}

func (NopNotifier) Notify(Toast) {}

func failure(title string, err error) Toast {
	return Toast{Title: title, Description: errorMessage(err), Destructive: true}
}

func errorMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
