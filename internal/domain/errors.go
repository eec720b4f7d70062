package domain

import (
	"errors"
	"fmt"
)

// Классификация ошибок обработки сообщения. Всё, что не помечено как drop,
// считается временной ошибкой: сообщение возвращается в очередь.
var (
	ErrMalformedEvent  = errors.New("malformed event")
	ErrUnknownIdentity = errors.New("unknown identity")
	ErrUnroutableEvent = errors.New("unroutable event")
	ErrMissingTariff   = errors.New("missing tariff")
)

func WrapMalformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
}

// IsDrop — true для ошибок, по которым повторная доставка бессмысленна:
// сообщение логируется и подтверждается, чтобы не зациклить очередь.
func IsDrop(err error) bool {
	return errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrUnknownIdentity) ||
		errors.Is(err, ErrUnroutableEvent) ||
		errors.Is(err, ErrMissingTariff)
}

// IsLoud — true для ошибок, которые стоит логировать на уровне error:
// нарушение бизнес-правила или дыра в конфигурации, требующая человека.
func IsLoud(err error) bool {
	return errors.Is(err, ErrUnroutableEvent) || errors.Is(err, ErrMissingTariff)
}
