package v1

import (
	"errors"

	"github.com/stashbox/backend/pkg/httperrors"
)

var status = httperrors.Status

var errMonthInvalid = errors.New("could not parse the specified month, use YYYY-MM format")
