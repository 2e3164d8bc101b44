package ble

import (
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const maxRetryAttempts = 5

func retry(logger zerolog.Logger, fn func() error) error {
	err := errors.New("not error")
	attempts := 0
	for err != nil && attempts < maxRetryAttempts {
		if attempts > 0 {
			logger.Debug().Int("attempt", attempts).Err(err).Msg("Retrying...")
		}
		attempts += 1
		err = fn()
	}
	if err != nil {
		return errors.Wrap(err, "Exceeded attempts issue")
	}
	return nil
}

func retryAndCatch(logger zerolog.Logger, method string, fn func() error) error {
	return retry(logger, func() error {
		e := util.CatchErrs(fn)
		if e == nil {
			return nil
		}
		return errors.Wrap(e, method+" issue")
	})
}
