package uuid

import "errors"

var ErrInvalidUUID = errors.New("the specified resource ID is not a valid UUID")
