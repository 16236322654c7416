package registry

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Option is a type that can be passed to Of to augment the creation of a type
// registration.
type Option[T any] func(*config[T]) error

type config[T any] struct {
	withConstructor bool
	hasDefault      bool
	defaultVal      T
	skippedFields   []string
	extraTraits     []any
}

func newConfig[T any]() *config[T] {
	return &config[T]{
		withConstructor: true,
	}
}

// WithoutConstructor disables the Constructor trait for the registration. Types
// registered this way cannot be instantiated by the engine and must always be
// supplied with an explicit value.
func WithoutConstructor[T any]() Option[T] {
	return func(c *config[T]) error {
		if c.hasDefault {
			return eris.New("cannot disable the constructor after setting a default value")
		}
		c.withConstructor = false
		return nil
	}
}

// WithDefault sets the value the Constructor trait produces instead of T's zero
// value.
func WithDefault[T any](defaultVal T) Option[T] {
	return func(c *config[T]) error {
		if !c.withConstructor {
			return eris.New("cannot set a default value on a registration without a constructor")
		}
		c.hasDefault = true
		c.defaultVal = defaultVal
		return nil
	}
}

// WithSkippedFields excludes the named struct fields from serialization. The
// fields are backfilled with their default values on decode.
func WithSkippedFields[T any](fields ...string) Option[T] {
	return func(c *config[T]) error {
		c.skippedFields = append(c.skippedFields, fields...)
		return nil
	}
}

// WithTrait attaches an arbitrary trait value to the registration.
func WithTrait[T any](trait any) Option[T] {
	return func(c *config[T]) error {
		if trait == nil || reflect.TypeOf(trait) == nil {
			return eris.New("cannot attach a nil trait")
		}
		c.extraTraits = append(c.extraTraits, trait)
		return nil
	}
}
