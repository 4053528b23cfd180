// Package eventbus dispatches in-process events to handlers by argument type.
package eventbus

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoSubscribers        = errors.New("eventbus: no matching subscribers")
	ErrInvalidHandlerReturn = errors.New("eventbus: invalid handler return signature")
)

type EventBus interface {
	Publish(args ...any)
	PublishE(args ...any) error
	// Subscribe registers handler, which must be a func. The returned func removes it.
	Subscribe(handler any) func()
	SubscribersCount() int
}

type subscriber struct {
	id      uint64
	handler reflect.Value
}

type bus struct {
	log *logrus.Entry

	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
}

func New(log *logrus.Entry) EventBus {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	return &bus{log: log.WithField("component", "eventbus")}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			switch param.Kind() {
			case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func:
				continue
			}
			return false
		}
		if !reflect.TypeOf(arg).AssignableTo(param) {
			return false
		}
	}
	return true
}

func (b *bus) matching(args []any) []reflect.Value {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []reflect.Value
	for _, s := range b.subs {
		if MatchSignature(s.handler.Interface(), args) {
			out = append(out, s.handler)
		}
	}
	return out
}

func values(fn reflect.Value, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(fn.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

func call(fn reflect.Value, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", fn.Type(), r)
		}
	}()

	out := fn.Call(values(fn, args))
	switch len(out) {
	case 0:
		return nil
	case 1:
		if out[0].Type() != reflect.TypeOf((*error)(nil)).Elem() {
			return errors.Wrapf(ErrInvalidHandlerReturn, "handler %s returns %s", fn.Type(), out[0].Type())
		}
		if out[0].IsNil() {
			return nil
		}
		return out[0].Interface().(error)
	}
	return errors.Wrapf(ErrInvalidHandlerReturn, "handler %s returns %d values", fn.Type(), len(out))
}

func eventName(args []any) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprintf("%T", args[len(args)-1])
}

// Publish calls every matching handler and logs failures instead of returning them.
func (b *bus) Publish(args ...any) {
	if err := b.PublishE(args...); err != nil {
		if errors.Is(err, ErrNoSubscribers) {
			b.log.WithField("event", eventName(args)).Debug("no subscribers")
			return
		}
		b.log.WithError(err).Warn("event handler failed")
	}
}

// PublishE calls every matching handler, including after one fails, and joins their errors.
func (b *bus) PublishE(args ...any) error {
	handlers := b.matching(args)
	if len(handlers) == 0 {
		return ErrNoSubscribers
	}
	var errs []error
	for _, h := range handlers {
		if err := call(h, args); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (b *bus) Subscribe(handler any) func() {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, handler: v})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *bus) SubscribersCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
