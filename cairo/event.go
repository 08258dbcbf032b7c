package cairo

import (
	"errors"
	"fmt"
)

// EventDecodable is implemented by generated event types. Key members are
// read from keys and all other members from data.
type EventDecodable interface {
	DecodeEventFrom(keys, data *Decoder) error
}

// DecodeEvent decodes an emitted event into v. Both keys and data must be
// consumed entirely.
func DecodeEvent(keys, data []Felt, v EventDecodable) error {
	kd, dd := NewDecoder(keys), NewDecoder(data)
	if err := v.DecodeEventFrom(kd, dd); err != nil {
		return err
	}
	if err := kd.Finish(); err != nil {
		return fmt.Errorf("event keys: %w", err)
	}
	if err := dd.Finish(); err != nil {
		return fmt.Errorf("event data: %w", err)
	}
	return nil
}

// UnknownEvent reports a selector that matches no variant of eventType.
func UnknownEvent(eventType string, selector Felt) error {
	return fmt.Errorf("%w: %s has no variant with selector %s", ErrUnknownEvent, eventType, selector)
}

// IsUnknownEvent reports whether err is an unmatched selector. Generated
// code uses it to try flat variants in order.
func IsUnknownEvent(err error) bool {
	return errors.Is(err, ErrUnknownEvent)
}
